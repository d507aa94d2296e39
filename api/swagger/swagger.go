package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Generator API",
        "description": "Constraint-based timetable generation for university students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Timetable generation and result retrieval"},
        {"name": "Monitoring", "description": "Health, readiness and runtime metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/status": {
            "get": {
                "tags": ["Monitoring"],
                "summary": "Runtime metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate ranked timetable candidates",
                "description": "Runs the two-phase constraint search. Infeasible requests return status NO_SOLUTION with HTTP 200.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/generate/async": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Queue a generation run",
                "description": "Returns a result id immediately. Poll the result endpoint; the result reports PENDING until the run finishes.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Asynchronous generation disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/results/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Fetch a previous generation result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown result id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/results/{id}/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export a generation result",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "index", "in": "query", "type": "integer", "description": "Export only the timetable at this rank (1-based)"}
                ],
                "responses": {
                    "200": {"description": "Exported file"},
                    "404": {"description": "Unknown result id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Result has no timetables", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["termId", "student", "credits"],
            "properties": {
                "termId": {"type": "string", "example": "2026-1"},
                "student": {"$ref": "#/definitions/StudentProfile"},
                "credits": {"$ref": "#/definitions/CreditTargets"},
                "filters": {"$ref": "#/definitions/Filters"},
                "preferences": {"$ref": "#/definitions/Preferences"},
                "preset": {"type": "string", "enum": ["BASIC", "ADVANCED", "EXPERT", "ULTRA"]}
            }
        },
        "StudentProfile": {
            "type": "object",
            "properties": {
                "departmentId": {"type": "integer"},
                "year": {"type": "integer", "example": 2},
                "completedCourses": {"type": "array", "items": {"type": "string"}},
                "shortageByCategory": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"},
                    "description": "Remaining credits per graduation category or general-education group"
                }
            }
        },
        "CreditTargets": {
            "type": "object",
            "properties": {
                "total": {"type": "integer", "example": 18},
                "major": {"type": "integer", "example": 9},
                "elective": {"type": "integer", "example": 9},
                "genEdShortages": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"},
                    "description": "Credit ceiling per general-education subcategory"
                }
            }
        },
        "Filters": {
            "type": "object",
            "properties": {
                "freeDays": {"type": "array", "items": {"type": "string"}, "example": ["금"]},
                "forcedCourseIds": {"type": "array", "items": {"type": "integer"}},
                "excludedCourseIds": {"type": "array", "items": {"type": "integer"}},
                "excludedCourseNames": {"type": "array", "items": {"type": "string"}},
                "maxWalkingMinutes": {"type": "integer", "description": "Omit for no limit"},
                "preferCompact": {"type": "boolean"}
            }
        },
        "Preferences": {
            "type": "object",
            "properties": {
                "timeOfDay": {"type": "string", "enum": ["MORNING", "AFTERNOON"]},
                "preferredInstructors": {"type": "array", "items": {"type": "string"}},
                "avoidedInstructors": {"type": "array", "items": {"type": "string"}},
                "preferredKeywords": {"type": "array", "items": {"type": "string"}},
                "avoidedKeywords": {"type": "array", "items": {"type": "string"}},
                "topicTags": {"type": "array", "items": {"type": "string"}}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
