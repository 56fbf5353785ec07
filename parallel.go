package bingo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds fan-out translation when no limit is given.
const DefaultConcurrency = 4

// Job is one text to translate with TranslateMany.
type Job struct {
	Text string
	From string
	To   string
}

// TranslateMany runs jobs through t with at most limit calls in flight.
// Identical jobs are translated once. Results keep the order of jobs. The
// first error cancels the remaining calls and is returned.
func TranslateMany(ctx context.Context, t Translator, jobs []Job, limit int) ([]*TranslationResult, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	// Deduplicate jobs, remembering where each result goes
	index := make(map[Job]int, len(jobs))
	var unique []Job
	slots := make([]int, len(jobs))
	for i, job := range jobs {
		n, ok := index[job]
		if !ok {
			n = len(unique)
			index[job] = n
			unique = append(unique, job)
		}
		slots[i] = n
	}

	translated := make([]*TranslationResult, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range unique {
		i, job := i, job
		g.Go(func() error {
			result, err := t.Translate(gctx, job.Text, job.From, job.To)
			if err != nil {
				return err
			}
			translated[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]*TranslationResult, len(jobs))
	for i, n := range slots {
		results[i] = translated[n]
	}
	return results, nil
}

// TranslateTargets translates text from one language into each of targets.
func TranslateTargets(ctx context.Context, t Translator, text, from string, targets []string, limit int) ([]*TranslationResult, error) {
	jobs := make([]Job, len(targets))
	for i, to := range targets {
		jobs[i] = Job{Text: text, From: from, To: to}
	}
	return TranslateMany(ctx, t, jobs, limit)
}
