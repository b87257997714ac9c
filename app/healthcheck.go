package main

import "net/http"

// healthCheckHandler reports the service version. The service is unavailable while the broker connection is down.
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status, code, broker := "available", http.StatusOK, "connected"
	if app.broker == nil || !app.broker.Connected() {
		status, code, broker = "unavailable", http.StatusServiceUnavailable, "disconnected"
	}

	env := envelope{
		"status": status,
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     app.config.Version,
			"broker":      broker,
		},
	}

	err := app.writeJSON(w, code, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
