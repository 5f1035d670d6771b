// Package docs holds the swagger spec of the console API. Regenerate it with
// go generate ./internal/server after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "seoaudit maintainers"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/audits": {
            "post": {
                "description": "Submits the URL to the audit API and polls the job in the background.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["audits"],
                "summary": "Start an audit",
                "parameters": [
                    {
                        "description": "Audit to start",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/server.StartAuditRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/model.AuditJob"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/audits/current": {
            "get": {
                "description": "Returns the tracked job, whether it is still polling, and its result once completed.",
                "produces": ["application/json"],
                "tags": ["audits"],
                "summary": "Current audit",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.CurrentState"}}
                }
            },
            "delete": {
                "tags": ["audits"],
                "summary": "Cancel the running audit",
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/audits/{jobID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audits"],
                "summary": "Get an audit result",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AuditResult"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/audits/{jobID}/checks": {
            "get": {
                "description": "Returns the checks of a tab, optionally narrowed by comma separated categories, statuses and severities.",
                "produces": ["application/json"],
                "tags": ["audits"],
                "summary": "List checks of an audit",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true},
                    {"type": "string", "description": "all, issues, passed, technical, content or ai", "name": "tab", "in": "query"},
                    {"type": "string", "description": "Categories", "name": "category", "in": "query"},
                    {"type": "string", "description": "Statuses", "name": "status", "in": "query"},
                    {"type": "string", "description": "Severities", "name": "severity", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.ChecksResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/audits/{jobID}/export": {
            "get": {
                "produces": ["application/json", "text/markdown"],
                "tags": ["audits"],
                "summary": "Export an audit",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true},
                    {"type": "string", "description": "json (default) or markdown", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/audits/{jobID}/pdf": {
            "get": {
                "description": "Proxies the PDF rendered by the audit API.",
                "produces": ["application/pdf"],
                "tags": ["audits"],
                "summary": "Download the PDF report",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "jobID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "List recorded audits",
                "parameters": [
                    {"type": "string", "description": "Only audits of this page", "name": "url", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Maximum entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/history.Entry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/compare": {
            "get": {
                "description": "Diffs head against base by job id, or the two latest audits of url.",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Compare two audits",
                "parameters": [
                    {"type": "string", "description": "Base job ID", "name": "base", "in": "query"},
                    {"type": "string", "description": "Head job ID", "name": "head", "in": "query"},
                    {"type": "string", "description": "Compare the two latest audits of this page", "name": "url", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/compare.ResultDelta"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports the console status and the audit API health.",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "app.CurrentState": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "error": {"type": "string"},
                "job": {"$ref": "#/definitions/model.AuditJob"},
                "result": {"$ref": "#/definitions/model.AuditResult"}
            }
        },
        "compare.Chunk": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "compare.CheckDelta": {
            "type": "object",
            "properties": {
                "base_points": {"type": "number"},
                "base_status": {"type": "string"},
                "category": {"type": "string"},
                "evidence_diff": {"type": "array", "items": {"$ref": "#/definitions/compare.Chunk"}},
                "head_points": {"type": "number"},
                "head_status": {"type": "string"},
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "name": {"type": "string"},
                "points_delta": {"type": "number"}
            }
        },
        "compare.ResultDelta": {
            "type": "object",
            "properties": {
                "base_job_id": {"type": "string"},
                "base_scores": {"$ref": "#/definitions/model.Scores"},
                "caps_added": {"type": "array", "items": {"type": "string"}},
                "caps_removed": {"type": "array", "items": {"type": "string"}},
                "checks": {"type": "array", "items": {"$ref": "#/definitions/compare.CheckDelta"}},
                "head_job_id": {"type": "string"},
                "head_scores": {"$ref": "#/definitions/model.Scores"},
                "same_site": {"type": "boolean"},
                "scores": {"$ref": "#/definitions/compare.ScoreDelta"},
                "url": {"type": "string"}
            }
        },
        "compare.ScoreDelta": {
            "type": "object",
            "properties": {
                "ai": {"type": "integer"},
                "content": {"type": "integer"},
                "overall": {"type": "integer"},
                "technical": {"type": "integer"}
            }
        },
        "history.Entry": {
            "type": "object",
            "properties": {
                "confidence_level": {"type": "string"},
                "final_url": {"type": "string"},
                "job_id": {"type": "string"},
                "received_at": {"type": "string"},
                "scores": {"$ref": "#/definitions/model.Scores"},
                "scoring_version": {"type": "string"},
                "site_key": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.AuditJob": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "running", "completed", "failed"]},
                "url": {"type": "string"}
            }
        },
        "model.AuditResult": {
            "type": "object",
            "properties": {
                "caps_applied": {"type": "array", "items": {"type": "string"}},
                "checks": {"type": "array", "items": {"$ref": "#/definitions/model.Check"}},
                "confidence": {"$ref": "#/definitions/model.Confidence"},
                "duration_seconds": {"type": "number"},
                "final_url": {"type": "string"},
                "job_id": {"type": "string"},
                "labels": {"type": "array", "items": {"type": "string"}},
                "received_at": {"type": "string"},
                "scores": {"$ref": "#/definitions/model.Scores"},
                "scoring_version": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.Check": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "evidence": {"type": "string"},
                "how_to_fix": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "points_awarded": {"type": "number"},
                "points_possible": {"type": "number"},
                "severity": {"type": "string", "enum": ["P0", "P1", "P2"]},
                "status": {"type": "string", "enum": ["pass", "partial", "fail", "skip"]}
            }
        },
        "model.Confidence": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["low", "medium", "high"]},
                "missing_sources": {"type": "array", "items": {"type": "string"}},
                "reason": {"type": "string"},
                "score": {"type": "integer"}
            }
        },
        "model.Scores": {
            "type": "object",
            "properties": {
                "ai": {"type": "integer"},
                "content": {"type": "integer"},
                "overall": {"type": "integer"},
                "technical": {"type": "integer"}
            }
        },
        "server.ChecksResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "array", "items": {"$ref": "#/definitions/model.Check"}},
                "count": {"type": "integer", "example": 4},
                "job_id": {"type": "string"},
                "tab": {"type": "string", "example": "issues"},
                "totals": {"type": "object"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "not found"}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "api": {"type": "string", "example": "ok"},
                "error": {"type": "string"},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "server.StartAuditRequest": {
            "type": "object",
            "properties": {
                "include_perf": {"type": "boolean", "example": true},
                "replace": {"type": "boolean", "example": false},
                "url": {"type": "string", "example": "example.com"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "seoaudit console API",
	Description:      "Starts SEO audits against the audit API, follows the running job and serves results, exports and history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
