package manager

import "context"

// Manager is the abstract surface of the backing package manager.
//
// ListInstalled and ListUpgradable are bulk queries: their cost is
// O(1) in the number of configured packages, which is the point of the
// snapshot design. Install and Upgrade apply one package each; override
// holds user-supplied installer arguments that replace the default
// silent flags when non-empty.
type Manager interface {
	ListInstalled(ctx context.Context) (string, error)
	ListUpgradable(ctx context.Context) (string, error)
	Install(ctx context.Context, id string, override []string) RunResult
	Upgrade(ctx context.Context, id string, override []string) RunResult
}
