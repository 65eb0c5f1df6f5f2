// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/users/me": {"get": {"summary": "Current user", "tags": ["users"], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/reporting": {"put": {"summary": "Set manager and appraiser (admin)", "tags": ["users"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/goals": {
            "get": {"summary": "List own goals", "tags": ["goals"], "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Create a draft goal", "tags": ["goals"], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "403": {"description": "Forbidden"}}}
        },
        "/goals/team": {"get": {"summary": "List team goals", "tags": ["goals"], "responses": {"200": {"description": "OK"}}}},
        "/goals/review-queue": {"get": {"summary": "Submitted goals awaiting the caller", "tags": ["goals"], "responses": {"200": {"description": "OK"}}}},
        "/goals/submit-all": {"post": {"summary": "Submit every draft goal", "tags": ["goals"], "responses": {"200": {"description": "OK"}, "422": {"description": "No reviewer assigned"}}}},
        "/goals/{id}": {
            "get": {"summary": "Get a goal", "tags": ["goals"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"summary": "Update a draft goal", "tags": ["goals"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}},
            "delete": {"summary": "Delete a draft goal", "tags": ["goals"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No content"}}}
        },
        "/goals/{id}/submit": {"post": {"summary": "Submit a goal for review", "tags": ["goals"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "422": {"description": "No reviewer assigned"}}}},
        "/goals/{id}/review": {"post": {"summary": "Approve, reject or return a submitted goal", "tags": ["goals"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/goals/{id}/progress": {
            "get": {"summary": "Progress history, newest first", "tags": ["progress"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Record progress", "tags": ["progress"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "Created"}}}
        },
        "/reviews": {"get": {"summary": "List visible reviews", "tags": ["reviews"], "parameters": [{"name": "goal_id", "in": "query", "type": "string"}, {"name": "review_type", "in": "query", "type": "string"}, {"name": "quarter", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/reviews/summary": {"get": {"summary": "Review summary", "tags": ["reviews"], "responses": {"200": {"description": "OK"}}}},
        "/reviews/comparison/{goalID}": {"get": {"summary": "Self vs manager comparison", "tags": ["reviews"], "parameters": [{"name": "goalID", "in": "path", "required": true, "type": "string"}, {"name": "quarter", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/reviews/goals/{goalID}/self-assessment": {"put": {"summary": "Upsert self-assessment", "tags": ["reviews"], "parameters": [{"name": "goalID", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/reviews/goals/{goalID}/manager-review": {"put": {"summary": "Upsert manager review", "tags": ["reviews"], "parameters": [{"name": "goalID", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/reviews/{id}": {
            "get": {"summary": "Get a review", "tags": ["reviews"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"summary": "Delete a review", "tags": ["reviews"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No content"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Appraisal API",
	Description:      "Goal lifecycle and review workflow.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
