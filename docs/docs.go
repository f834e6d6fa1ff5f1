// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LoginResponse"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tournaments"], "summary": "List tournaments", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tournaments"], "summary": "Create tournament", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/tournaments/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tournaments"], "summary": "Get tournament", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Tournaments"], "summary": "Update tournament", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Tournaments"], "summary": "Delete tournament and its camera history", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/workers": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Workers"], "summary": "List workers", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Workers"], "summary": "Create worker", "responses": {"201": {"description": "Created"}}}
        },
        "/cameras": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Cameras"], "summary": "List cameras", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Cameras"], "summary": "Create camera", "responses": {"201": {"description": "Created"}}}
        },
        "/cameras/{id}/assign": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Cameras"], "summary": "Assign camera to worker", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/cameras/{id}/unassign": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Cameras"], "summary": "Unassign camera", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/cameras/{id}/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Cameras"], "summary": "Camera history", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/shipments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Shipments"], "summary": "List shipments", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Shipments"], "summary": "Create shipment", "responses": {"201": {"description": "Created"}}}
        },
        "/camera-history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["History"], "summary": "List camera history", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["History"], "summary": "Append camera history", "responses": {"201": {"description": "Created"}}}
        },
        "/reports/tournaments/monthly": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Reports"], "summary": "Tournaments per month", "produces": ["application/json", "text/csv"], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/shipments/monthly": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Reports"], "summary": "Shipments per month", "produces": ["application/json", "text/csv"], "responses": {"200": {"description": "OK"}}}
        },
        "/reports/states": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Reports"], "summary": "Tournaments per state", "responses": {"200": {"description": "OK"}}}
        },
        "/events/replay": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Events"], "summary": "Replay events", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/admin/reset": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Reset fleet", "responses": {"200": {"description": "OK"}, "500": {"description": "Partial reset"}}}
        },
        "/admin/import/{kind}": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Admin"], "summary": "Bulk import", "consumes": ["multipart/form-data", "application/json"], "parameters": [{"type": "string", "name": "kind", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "model.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "model.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresAt": {"type": "string"},
                "user": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "GolfCam API",
	Description:      "Camera logistics for golf tournament broadcasts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
