package worker

// SetBeforeReady installs f to run after a session's pyramid is built and
// before it is registered.
func SetBeforeReady(p *Pool, f func(sessionID string)) { p.beforeReady = f }
