package server

//go:generate swag init -g internal/server/swagger.go -o internal/server/docs --parseInternal

// @title seoaudit console API
// @version 1.0
// @description Starts SEO audits against the audit API, follows the running job and serves results, exports and history.
// @contact.name seoaudit maintainers
// @BasePath /
