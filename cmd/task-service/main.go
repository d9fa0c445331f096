package main

import (
	"github.com/KarpovAlexandrGo/task-service/internal/app"
	"github.com/KarpovAlexandrGo/task-service/pkg/logger"
)

// @title           Task Service API
// @version         1.0
// @description     In-memory task tracker with validated create, update and HIGH priority due date rules.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

func main() {
	a, err := app.NewApp()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize app")
	}

	if err := a.Run(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to run app")
	}
}
