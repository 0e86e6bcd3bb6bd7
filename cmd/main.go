package main

import (
	"studylab-api/app"
)

// @title           StudyLab API
// @version         1.0
// @description     Accounts, sessions and study history for StudyLab.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
