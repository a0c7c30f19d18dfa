package build

import (
	"context"

	"github.com/arkadix/hostforge/fault"
	"github.com/arkadix/hostforge/probe"
)

// Jobs resolves the make parallelism. An explicit override wins; otherwise
// the probed CPU count is used.
func Jobs(ctx context.Context, override int, prober *probe.Prober) (int, error) {
	if override > 0 {
		return override, nil
	}
	facts, err := prober.Facts(ctx)
	if err != nil {
		return 0, fault.Wrap(fault.KindBuild, err, "could not determine CPU count for make")
	}
	return facts.CPUCount, nil
}
