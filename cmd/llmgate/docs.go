package main

// General API documentation for swaggo. Run `swag init -g cmd/llmgate/docs.go -o docs`
// and build with -tags=swagger to serve it at /swagger/.
//
// @title           llmgate API
// @version         1.0
// @description     Local LLM inference gateway: generation, model reload and health.
//
// @contact.name   llmgate maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
