package observability

import "go.uber.org/zap"

// NewLogger returns a structured logger tuned for the deployment environment.
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
