package solver

// Provider builds NewtonRaphson solvers for a fixed target function.
// Each computation carries its own tolerance, so solvers are constructed
// per request rather than shared.
type Provider struct {
	target TargetFunc
}

// NewProvider creates a Provider for the given target function.
func NewProvider(target TargetFunc) (*Provider, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	return &Provider{target: target}, nil
}

// ForEpsilon returns a RootFinder configured with the given tolerance.
func (p *Provider) ForEpsilon(epsilon float64) (RootFinder, error) {
	return NewNewtonRaphson(p.target, epsilon)
}
