package converter

import (
	"context"
	"sync"
)

// workItem represents a file and its index in the original file list.
type workItem struct {
	path  string
	owner string
	index int
}

// runParallel converts files using a work queue pattern. Workers pull from
// the same queue until it is drained; each conversion owns its buffer, so the
// only shared state is the results slice, indexed by position. Duplicate test
// names are resolved before the queue is filled, so no two workers write the
// same output.
func (c *Converter) runParallel(ctx context.Context, files, owners []string) []FileResult {
	workers := c.config.Parallelism
	if workers > len(files) {
		workers = len(files)
	}

	workQueue := make(chan workItem, len(files))
	for i, path := range files {
		workQueue <- workItem{path: path, owner: owners[i], index: i}
	}
	close(workQueue)

	results := make([]FileResult, len(files))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workQueue {
				if ctx.Err() != nil {
					results[item.index] = skipped(item.path)
					continue
				}
				results[item.index] = c.convertFile(ctx, item.path, item.owner, item.index, len(files))
			}
		}()
	}

	wg.Wait()
	return results
}
