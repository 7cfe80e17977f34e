package conflict

import (
	"context"
	"runtime"
	"strings"

	"github.com/arthur-debert/pkgsync/pkg/errors"
	"github.com/arthur-debert/pkgsync/pkg/manager"
)

// osController shells out to the platform's process tools: tasklist and
// taskkill on Windows, pgrep and pkill elsewhere. OS termination
// primitives are used, not reimplemented.
type osController struct {
	runner manager.Runner
}

// NewOSController returns the platform-backed ProcessController.
func NewOSController(runner manager.Runner) ProcessController {
	return &osController{runner: runner}
}

func (c *osController) IsRunning(ctx context.Context, name string) bool {
	if runtime.GOOS == "windows" {
		image := imageName(name)
		r := c.runner.Run(ctx, "tasklist", []string{"/NH", "/FI", "IMAGENAME eq " + image})
		// tasklist exits zero even with no match; the filter echoes a
		// "no tasks" message instead.
		return r.Err == nil && strings.Contains(strings.ToLower(r.Output), strings.ToLower(image))
	}

	r := c.runner.Run(ctx, "pgrep", []string{"-x", name})
	return r.Err == nil && r.ExitCode == 0
}

func (c *osController) Terminate(ctx context.Context, name string) error {
	if runtime.GOOS == "windows" {
		r := c.runner.Run(ctx, "taskkill", []string{"/F", "/T", "/IM", imageName(name)})
		if r.Err != nil {
			return errors.Wrapf(r.Err, errors.ErrConflictKill, "taskkill %s failed to run", name)
		}
		// 128 means no such process, which is fine: the goal is "not
		// running", not "was killed by us".
		if r.ExitCode != 0 && r.ExitCode != 128 {
			return errors.Newf(errors.ErrConflictKill, "taskkill %s exited with code %d", name, r.ExitCode)
		}
		return nil
	}

	r := c.runner.Run(ctx, "pkill", []string{"-9", "-x", name})
	if r.Err != nil {
		return errors.Wrapf(r.Err, errors.ErrConflictKill, "pkill %s failed to run", name)
	}
	// pkill exits 1 when nothing matched; already stopped is success.
	if r.ExitCode > 1 {
		return errors.Newf(errors.ErrConflictKill, "pkill %s exited with code %d", name, r.ExitCode)
	}
	return nil
}

// imageName appends .exe when the configured name has no extension,
// matching how tasklist/taskkill identify images.
func imageName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".exe"
}
