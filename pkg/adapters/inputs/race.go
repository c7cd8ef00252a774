package inputs

import (
	"context"
	"errors"

	"github.com/aretw0/fieldsweep/pkg/domain"
	"github.com/aretw0/fieldsweep/pkg/ports"
)

type raced struct {
	providers []ports.InputProvider
}

// Race asks every provider at once. The first path or decline wins and the
// other requests are canceled. A provider that fails for another reason
// drops out; when all have dropped out the last error is returned.
func Race(providers ...ports.InputProvider) ports.InputProvider {
	if len(providers) == 1 {
		return providers[0]
	}
	return &raced{providers: providers}
}

func (r *raced) RequestInput(ctx context.Context, req domain.InputRequest) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan answer, len(r.providers))
	for _, p := range r.providers {
		go func(p ports.InputProvider) {
			path, err := p.RequestInput(ctx, req)
			results <- answer{path: path, err: err}
		}(p)
	}

	var last error
	for range r.providers {
		a := <-results
		if a.err == nil || errors.Is(a.err, domain.ErrInputDeclined) {
			return a.path, a.err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		last = a.err
	}
	return "", last
}
