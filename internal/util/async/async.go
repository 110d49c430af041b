package async

import (
	"context"
	"errors"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

type result struct {
	index int
	err   error
}

// run starts every task and returns their errors in task order.
func run(ctx context.Context, tasks []Task) []error {
	results := make(chan result, len(tasks))
	for i, task := range tasks {
		go func() {
			results <- result{index: i, err: task.Func(ctx)}
		}()
	}

	errs := make([]error, len(tasks))
	for range len(tasks) {
		res := <-results
		if res.err != nil {
			errs[res.index] = fmt.Errorf("%s: %w", tasks[res.index].Name, res.err)
		}
	}
	return errs
}

// RunParallel executes tasks concurrently and waits for all of them.
// It returns the error of the first failing task in task order.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "i-0abc", Func: refreshInstance},
//	    {Name: "vol-0def", Func: refreshVolume},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	for _, err := range run(ctx, tasks) {
		if err != nil {
			return err
		}
	}
	return nil
}

// RunAll executes tasks concurrently and joins every failure into one error.
func RunAll(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return errors.Join(run(ctx, tasks)...)
}
