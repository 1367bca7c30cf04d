package pipeline

import (
	"context"
)

const streamBufferSize = 8

// Take forwards at most n items of inputStream.
func Take[T any](ctx context.Context, n uint, inputStream <-chan T) <-chan T {
	outputStream := make(chan T, streamBufferSize)
	go func() {
		defer close(outputStream)

		for i := uint(0); i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-inputStream:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case outputStream <- item:
				}
			}
		}
	}()

	return outputStream
}

// FromSlice emits items and closes the stream.
func FromSlice[T any](ctx context.Context, items []T) <-chan T {
	outputStream := make(chan T, streamBufferSize)
	go func() {
		defer close(outputStream)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case outputStream <- item:
			}
		}
	}()

	return outputStream
}

// OrDone forwards inputStream until it is closed or ctx is done.
func OrDone[T any](ctx context.Context, inputStream <-chan T) <-chan T {
	outputStream := make(chan T, streamBufferSize)
	go func() {
		defer close(outputStream)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-inputStream:
				if !ok {
					return
				}

				select {
				case <-ctx.Done():
					return
				case outputStream <- v:
				}
			}
		}
	}()

	return outputStream
}
