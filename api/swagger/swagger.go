package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Multi-tenant academic timetable generation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Departments", "description": "Tenants"},
        {"name": "Roster", "description": "Subjects, classrooms, staff and workload constraints"},
        {"name": "Timetable", "description": "Generation runs and timetable views"}
    ],
    "paths": {
        "/departments": {
            "get": {
                "tags": ["Departments"],
                "summary": "List departments",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Departments"],
                "summary": "Create department",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDepartmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Code already used", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments/{id}": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {"tags": ["Departments"], "summary": "Get department", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Departments"], "summary": "Update department", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Departments"], "summary": "Delete department and everything it owns", "responses": {"204": {"description": "Deleted"}}}
        },
        "/departments/{id}/subjects": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {"tags": ["Roster"], "summary": "List subjects", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Roster"],
                "summary": "Create subject",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/departments/{id}/classrooms": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {"tags": ["Roster"], "summary": "List classrooms", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Roster"],
                "summary": "Create classroom",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassroomRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/departments/{id}/staff": {
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "get": {"tags": ["Roster"], "summary": "List staff", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Roster"],
                "summary": "Create staff member",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StaffRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/staff/{id}/subjects": {
            "post": {
                "tags": ["Roster"],
                "summary": "Select and lock subjects",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectSubjectsRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Subjects already locked"}}
            }
        },
        "/staff/{id}/unlock": {
            "post": {
                "tags": ["Roster"],
                "summary": "Unlock subject selection",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/departments/{id}/constraints/effective": {
            "get": {
                "tags": ["Roster"],
                "summary": "Effective workload limits for a role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "role", "in": "query", "required": true, "type": "string", "enum": ["assistant_professor", "professor", "hod"]}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/departments/{id}/roster/import": {
            "post": {
                "tags": ["Roster"],
                "summary": "Import roster workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"200": {"description": "OK"}, "413": {"description": "File too large"}}
            }
        },
        "/departments/{id}/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "async", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued"},
                    "409": {"description": "Generation already running"},
                    "422": {"description": "No locked staff, subjects or classrooms"}
                }
            }
        },
        "/departments/{id}/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Read timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "view", "in": "query", "type": "string", "enum": ["department", "staff", "classroom"]},
                    {"name": "staff_id", "in": "query", "type": "string"},
                    {"name": "classroom_id", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/departments/{id}/timetable/runs": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List generation runs",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["queued", "running", "completed", "failed"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/timetable-runs/{id}": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get generation run",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        }
    },
    "definitions": {
        "CreateDepartmentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "auto_regenerate": {"type": "boolean"}
            },
            "required": ["name", "code"]
        },
        "SubjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "credits": {"type": "integer", "default": 3}
            },
            "required": ["name", "code"]
        },
        "ClassroomRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "capacity": {"type": "integer"}
            },
            "required": ["name", "capacity"]
        },
        "StaffRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "staff_role": {"type": "string", "enum": ["assistant_professor", "professor", "hod"]}
            },
            "required": ["name", "staff_role"]
        },
        "SelectSubjectsRequest": {
            "type": "object",
            "properties": {
                "subject_ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["subject_ids"]
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "strategy": {"type": "string", "enum": ["least_loaded", "random_retry"]},
                "seed": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
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
