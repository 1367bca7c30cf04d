package common

import "runtime"

// GetProcNum returns the number of workers to run for jobs tasks. A zero
// maxGoRoutines means one worker per CPU. The result is never larger than
// jobs and never smaller than one.
func GetProcNum(maxGoRoutines uint, jobs int) int {
	n := int(maxGoRoutines)
	if n == 0 {
		n = runtime.NumCPU()
	}
	if jobs < n {
		n = jobs
	}
	if n < 1 {
		n = 1
	}

	return n
}
