package render

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxsprite/vox"
)

// Selection picks what to render. A nil field selects everything of that
// kind; an empty non-nil field selects nothing.
type Selection struct {
	Models []int
	Views  []View
	Sides  []Side

	// Extras are Oblique and Dimetric targets rendered after the sides.
	// Unlike the other fields, nil selects none of them.
	Extras []Target
}

// Job is one unit of work: a model rendered onto one target.
type Job struct {
	Model  int
	Target Target
}

func (j Job) Label() Label { return Label{Model: j.Model, Target: j.Target} }

// Plan expands sel into the list of jobs: per model, every view, every side,
// then the extras. Model indexes are not checked here; Render reports bad
// ones.
func Plan(sel Selection, modelCount int) []Job {
	models := sel.Models
	if models == nil {
		models = make([]int, modelCount)
		for i := range models {
			models[i] = i
		}
	}
	views := sel.Views
	if views == nil {
		views = AllViews()
	}
	sides := sel.Sides
	if sides == nil {
		sides = AllSides()
	}
	jobs := make([]Job, 0, len(models)*(len(views)+len(sides)+len(sel.Extras)))
	for _, m := range models {
		for _, v := range views {
			jobs = append(jobs, Job{Model: m, Target: v})
		}
		for _, s := range sides {
			jobs = append(jobs, Job{Model: m, Target: s})
		}
		for _, t := range sel.Extras {
			jobs = append(jobs, Job{Model: m, Target: t})
		}
	}
	return jobs
}

// Options control rendering. Workers <= 0 uses GOMAXPROCS.
type Options struct {
	Shading Shading
	Workers int
}

// Result is the outcome of one job. Exactly one of Canvas and Err is set.
type Result struct {
	Job    Job
	Canvas Canvas
	Err    error
}

// Render projects, shades and crops one job.
func Render(f *vox.File, job Job, opts Options) (Canvas, error) {
	if job.Model < 0 || job.Model >= len(f.Models) {
		valid := "none, the file has no models"
		if len(f.Models) > 0 {
			valid = "0.." + strconv.Itoa(len(f.Models)-1)
		}
		return Canvas{}, &SelectionError{What: "model", Value: strconv.Itoa(job.Model), Valid: valid}
	}
	buf, err := project(f.Models[job.Model], job.Target)
	if err != nil {
		return Canvas{}, err
	}
	pal := f.Palette
	if pal == nil {
		pal = vox.DefaultPalette()
	}
	pix := rasterize(buf, pal, opts.Shading.orDefault())
	return assemble(buf.width, buf.height, pix), nil
}

// RenderAll renders jobs on a bounded pool of goroutines. Results are in job
// order; a failing job does not affect the others. Jobs not started before
// ctx is done fail with ctx.Err().
func RenderAll(ctx context.Context, f *vox.File, jobs []Job, opts Options) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i].Job = job
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Canvas, results[i].Err = Render(f, job, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
