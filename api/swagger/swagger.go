package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassTap API",
        "description": "Card-tap attendance engine: live status resolution, overrides, daily finalization and exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login and session info"},
        {"name": "Events", "description": "Card reader tap ingestion"},
        {"name": "Courses", "description": "Course and enrollment management"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Attendance", "description": "Live status, overrides, finalization and summaries"},
        {"name": "Exports", "description": "Asynchronous attendance reports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive a JWT",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated user",
                "responses": {
                    "200": {"description": "User info", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events": {
            "post": {
                "tags": ["Events"],
                "summary": "Ingest one card tap",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TapEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tap recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown card for the course"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "responses": {"200": {"description": "Courses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate course code"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get one course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Course"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete a course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/courses/{id}/students": {
            "post": {
                "tags": ["Courses"],
                "summary": "Enroll a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Enrolled"}, "409": {"description": "Already enrolled"}}
            }
        },
        "/courses/{id}/students/{sid}": {
            "delete": {
                "tags": ["Courses"],
                "summary": "Remove a student from a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "Removed"}}
            }
        },
        "/courses/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Live per-student attendance for a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["preview", "trusted"]}
                ],
                "responses": {"200": {"description": "Course view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/attendance/class": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Weighted class attendance percentage",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Class summary"}}
            }
        },
        "/courses/{id}/attendance/finalize": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Finalize a day into immutable attendance records",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Records written"}}
            }
        },
        "/courses/{id}/attendance/clear": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Clear live tap state for the next session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Cleared"}}
            }
        },
        "/courses/{id}/students/{sid}/history": {
            "get": {
                "tags": ["Attendance"],
                "summary": "One student's finalized attendance history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "History"}}
            }
        },
        "/courses/{id}/students/{sid}/override": {
            "put": {
                "tags": ["Attendance"],
                "summary": "Set or clear a manual status for one student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"204": {"description": "Override stored"}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "Students"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student and their card UID",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate card UID"}}
            }
        },
        "/courses/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an attendance export",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"202": {"description": "Job queued"}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Job"}, "404": {"description": "Unknown job"}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "401": {"description": "Expired or invalid token"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "TapEventRequest": {
            "type": "object",
            "required": ["course_id", "uid", "event", "timestamp"],
            "properties": {
                "course_id": {"type": "string"},
                "uid": {"type": "string"},
                "event": {"type": "string", "enum": ["arrival", "exit"]},
                "timestamp": {"type": "string"},
                "total_seconds": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
