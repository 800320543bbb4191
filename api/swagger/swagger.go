package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Capacity API",
        "description": "Field-service capacity availability and reservation API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "in": "header", "name": "X-API-Key"},
        "BasicAuth": {"type": "basic"},
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [
        {"ApiKeyAuth": []},
        {"BasicAuth": []},
        {"BearerAuth": []}
    ],
    "tags": [
        {"name": "Capacity", "description": "Availability and reservations"},
        {"name": "Parameters", "description": "Configuration parameters"},
        {"name": "Authentication", "description": "Access tokens"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange username and password for a bearer token",
                "security": [],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capacity": {
            "post": {
                "tags": ["Capacity"],
                "summary": "Compute capacity availability",
                "description": "disponible = quota - reservada - travel buffer - cantidad",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capacity/schedule": {
            "post": {
                "tags": ["Capacity"],
                "summary": "Reserve capacity",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request or insufficient capacity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capacity/export": {
            "post": {
                "tags": ["Capacity"],
                "summary": "Export capacity availability",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capacity/pools/{poolId}/categories": {
            "get": {
                "tags": ["Capacity"],
                "summary": "Pool capacity table",
                "parameters": [
                    {"name": "poolId", "in": "path", "required": true, "type": "integer"},
                    {"name": "periodo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capacity/pools/{poolId}/cache": {
            "delete": {
                "tags": ["Capacity"],
                "summary": "Drop the cached capacity table of a pool",
                "parameters": [
                    {"name": "poolId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/parameters/{name}": {
            "get": {
                "tags": ["Parameters"],
                "summary": "Get parameter by name",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "AvailabilityRequest": {
            "type": "object",
            "properties": {
                "id_pool": {"type": "integer"},
                "fechas": {"type": "string", "example": "2024-01-01,2024-01-08"},
                "cantidad": {"type": "integer"},
                "id_order": {"type": "integer"},
                "periodo": {"type": "string"}
            },
            "required": ["id_pool", "fechas", "cantidad"]
        },
        "ScheduleRequest": {
            "type": "object",
            "properties": {
                "fecha": {"type": "string", "example": "2024-01-01"},
                "periodo": {"type": "string"},
                "cantidad": {"type": "integer"},
                "id_pool": {"type": "integer"}
            },
            "required": ["fecha", "periodo", "cantidad", "id_pool"]
        },
        "AvailabilitySlot": {
            "type": "object",
            "properties": {
                "fecha": {"type": "string"},
                "categoria": {"type": "integer"},
                "nombre": {"type": "string"},
                "idskills": {"type": "string"},
                "quota": {"type": "number"},
                "reservada": {"type": "number"},
                "disponible": {"type": "number"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "errorCode": {"type": "integer"},
                "errorDescription": {"type": "string"},
                "data": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
