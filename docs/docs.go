// Package docs holds the OpenAPI description served under /swagger, in the
// layout swag init produces. Keep it in sync with the handler annotations.
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
        "/api/v1/documents/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Returns answer counters, status and approval of the document",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Get a Statement of Applicability document",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DocumentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.Error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.Error"}}
                }
            }
        },
        "/api/v1/documents/{id}/auto-answer": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Classifies applicability of the document's questions from organizational evidence.\nStreams newline-delimited JSON events: progress, processing, answer, complete or error.",
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "tags": ["answers"],
                "summary": "Auto-answer document questions",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true},
                    {"description": "Optional question subset", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.AutoAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CompleteEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.Error"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.ValidationError"}}
                }
            }
        },
        "/api/v1/documents/{id}/questions/{questionId}/versions": {
            "get": {
                "security": [{"Bearer": []}],
                "description": "Returns the append-only answer history of one question, newest first",
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List answer versions of a question",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Question ID", "name": "questionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.AnswerVersionResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.Error"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.Error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.Error"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AnswerEvent": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "insufficientData": {"type": "boolean"},
                "isApplicable": {"type": "boolean"},
                "justification": {"type": "string"},
                "questionId": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/models.Source"}},
                "succeeded": {"type": "boolean"},
                "type": {"type": "string"}
            }
        },
        "dto.AnswerVersionResponse": {
            "type": "object",
            "properties": {
                "answer_text": {"type": "string"},
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "id": {"type": "string"},
                "is_applicable": {"type": "boolean"},
                "is_latest": {"type": "boolean"},
                "question_id": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "dto.AutoAnswerRequest": {
            "type": "object",
            "properties": {
                "onlyUnanswered": {"type": "boolean"},
                "questionIds": {"type": "array", "maxItems": 500, "items": {"type": "string"}}
            }
        },
        "dto.CompleteEvent": {
            "type": "object",
            "properties": {
                "answered": {"type": "integer"},
                "failed": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/dto.AnswerEvent"}},
                "total": {"type": "integer"},
                "type": {"type": "string"}
            }
        },
        "dto.DocumentResponse": {
            "type": "object",
            "properties": {
                "answered_questions": {"type": "integer"},
                "approved_at": {"type": "string"},
                "completed_at": {"type": "string"},
                "configuration_id": {"type": "string"},
                "id": {"type": "string"},
                "organization_id": {"type": "string"},
                "status": {"type": "string"},
                "total_questions": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.Error": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "handlers.ValidationError": {
            "type": "object",
            "properties": {
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "integer"}
            }
        },
        "models.Source": {
            "type": "object",
            "properties": {
                "relevanceScore": {"type": "number"},
                "sourceId": {"type": "string"},
                "sourceName": {"type": "string"},
                "sourceType": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
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
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Comply RAG API",
	Description:      "Retrieval-augmented applicability answers for compliance questionnaires.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
