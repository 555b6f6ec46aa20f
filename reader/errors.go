package reader

import "fmt"

// ConfigError reports an invalid adapter configuration. It is returned at
// construction time so a bad symbol list never opens a socket.
type ConfigError struct {
	Exchange string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s adapter config: %s", e.Exchange, e.Reason)
}
