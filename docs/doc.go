// Package docs holds the OpenAPI document generated by swag from the
// handler annotations in internal/httpapi. It is compiled in only with
// -tags=swagger.
package docs
