package geolayer

import "sync"

// task calls fn for every element of data, splitting data in contiguous
// chunks over workersCount goroutines. It runs inline for a single worker.
func task[T any](workersCount int, data []T, fn func(i int, item T)) {
	dataSize := len(data)
	if workersCount <= 1 || dataSize < 2 {
		for i, item := range data {
			fn(i, item)
		}
		return
	}

	workersCount = min(workersCount, dataSize)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	var wg sync.WaitGroup
	for start := 0; start < dataSize; start += chunkSize {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(start, min(start+chunkSize, dataSize))
	}
	wg.Wait()
}
