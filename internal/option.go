package internal

// Option configures the application before Run wires it up.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration. Run fails without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
