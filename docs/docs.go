// Package docs registers the OpenAPI description of the identity service
// with swag so echo-swagger can serve it under /swagger/.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new tenant and its owner",
                "parameters": [
                    {"description": "Owner and organisation details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.registerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/auth/login/{registration_id}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login with an upstream identity provider",
                "parameters": [
                    {"type": "string", "description": "Provider registration id", "name": "registration_id", "in": "path", "required": true},
                    {"description": "Signed provider assertion", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"SessionToken": []}],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/v1/me": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Current principal",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.principalResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/tenant/switch": {
            "post": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["identity"],
                "summary": "Switch tenant",
                "parameters": [
                    {"description": "Target tenant", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.switchTenantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.switchTenantResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.switchTenantResponse"}}
                }
            }
        },
        "/v1/api-key": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["api-key"],
                "summary": "Describe tenant API key",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.apiKeyResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["api-key"],
                "summary": "Issue tenant API key",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.issuedKeyResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/members": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["members"],
                "summary": "List members",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Member"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/members/{user_id}/roles": {
            "get": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["members"],
                "summary": "Roles assignable to a member",
                "parameters": [
                    {"type": "string", "description": "Member user id", "name": "user_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.allowedRolesResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/members/{user_id}/role": {
            "put": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "tags": ["members"],
                "summary": "Change a member's role",
                "parameters": [
                    {"type": "string", "description": "Member user id", "name": "user_id", "in": "path", "required": true},
                    {"description": "New role", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.changeRoleRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/members/{user_id}": {
            "delete": {
                "security": [{"SessionToken": []}],
                "tags": ["members"],
                "summary": "Remove a member",
                "parameters": [
                    {"type": "string", "description": "Member user id", "name": "user_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/v1/tenant/leave": {
            "post": {
                "security": [{"SessionToken": []}],
                "tags": ["members"],
                "summary": "Leave the current tenant",
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/tenant": {
            "get": {
                "security": [{"APIKey": []}],
                "produces": ["application/json"],
                "tags": ["api"],
                "summary": "Tenant of the API key",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.tenantResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "reason": {"type": "string"}}},
        "domain.Member": {"type": "object", "properties": {
            "user": {"$ref": "#/definitions/domain.User"}, "roles": {"type": "array", "items": {"type": "string"}}}},
        "handler.changeRoleRequest": {"type": "object", "required": ["role"], "properties": {
            "role": {"type": "string", "enum": ["OWNER", "ADMIN", "USER"]}}},
        "handler.allowedRolesResponse": {"type": "object", "properties": {
            "user_id": {"type": "string"}, "roles": {"type": "array", "items": {"type": "string"}}}},
        "domain.User": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"},
            "email_verified": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "domain.Tenant": {"type": "object", "properties": {
            "id": {"type": "string"}, "organization_name": {"type": "string"}, "created_at": {"type": "string"}}},
        "handler.registerRequest": {"type": "object", "required": ["name", "email"], "properties": {
            "name": {"type": "string"}, "email": {"type": "string"}, "organization": {"type": "string"}}},
        "handler.registerResponse": {"type": "object", "properties": {
            "user": {"$ref": "#/definitions/domain.User"}, "tenant": {"$ref": "#/definitions/domain.Tenant"}}},
        "handler.loginRequest": {"type": "object", "required": ["assertion"], "properties": {"assertion": {"type": "string"}}},
        "handler.principalResponse": {"type": "object", "properties": {
            "user": {"$ref": "#/definitions/domain.User"}, "tenant": {"$ref": "#/definitions/domain.Tenant"},
            "authorities": {"type": "array", "items": {"type": "string"}},
            "roles": {"type": "array", "items": {"type": "string"}},
            "registration_id": {"type": "string"}}},
        "handler.sessionResponse": {"type": "object", "properties": {
            "session_token": {"type": "string"}, "expires_at": {"type": "string"},
            "principal": {"$ref": "#/definitions/handler.principalResponse"}}},
        "handler.switchTenantRequest": {"type": "object", "required": ["tenant_id"], "properties": {"tenant_id": {"type": "string"}}},
        "handler.switchTenantResponse": {"type": "object", "properties": {
            "result": {"type": "string", "enum": ["tenant_changed", "not_allowed"]},
            "principal": {"$ref": "#/definitions/handler.principalResponse"}}},
        "handler.issuedKeyResponse": {"type": "object", "properties": {
            "key": {"type": "string"}, "key_id": {"type": "string"}, "tenant_id": {"type": "string"}, "created_at": {"type": "string"}}},
        "handler.apiKeyResponse": {"type": "object", "properties": {
            "key_id": {"type": "string"}, "tenant_id": {"type": "string"}, "created_at": {"type": "string"}}},
        "handler.tenantResponse": {"type": "object", "properties": {
            "tenant": {"$ref": "#/definitions/domain.Tenant"}, "authentication": {"type": "string"}}}
    },
    "securityDefinitions": {
        "SessionToken": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "APIKey": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Identity Service API",
	Description:      "Tenant-aware login sessions, tenant switching and tenant API keys.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
