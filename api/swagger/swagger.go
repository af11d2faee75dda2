package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academica API",
        "description": "Grade aggregation and random group assignment service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Weights", "description": "Weight category structures per class and partial"},
        {"name": "Grades", "description": "Partial totals and period averages"},
        {"name": "Assignments", "description": "Random group draws and manual adjustments"},
        {"name": "Evaluations", "description": "Gradable assignments and exams"},
        {"name": "Scores", "description": "Per-student evaluation scores"},
        {"name": "Periods", "description": "Academic periods and partials"},
        {"name": "Projects", "description": "Class projects and groupings"},
        {"name": "Classes", "description": "Classes and rosters"},
        {"name": "Exports", "description": "Grade sheet and grouping exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/classes/{classId}/partials/{partialId}/weights/validate": {
            "get": {
                "tags": ["Weights"],
                "summary": "Validate a weight structure",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "partialId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Valid structure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty, duplicate or incomplete structure"}
                }
            }
        },
        "/students/{studentId}/classes/{classId}/partials/{partialId}/total": {
            "get": {
                "tags": ["Grades"],
                "summary": "Compute a partial-term total",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "partialId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Total with per-category breakdown", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No structure"},
                    "409": {"description": "Invalid structure"}
                }
            }
        },
        "/classes/{classId}/projects/{projectId}/draw": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Randomly draw project groups",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "projectId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Drawn groups", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Draw already in progress"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
