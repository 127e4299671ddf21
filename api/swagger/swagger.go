package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DesignTrack API",
        "description": "Freelance design project tracker: versioned deliverables, revision quotas and tokenized client access",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Projects", "description": "Freelancer project management"},
        {"name": "Files", "description": "Design file versions"},
        {"name": "Client", "description": "Tokenized client access"}
    ],
    "paths": {
        "/projects": {
            "get": {
                "tags": ["Projects"],
                "summary": "Project dashboard",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "description": "Filter by lifecycle status; defaults to active projects"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Projects"],
                "summary": "Create project",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "tags": ["Projects"],
                "summary": "Project detail with files, feedback and timeline",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Projects"],
                "summary": "Edit project, including the status override",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Projects"],
                "summary": "Delete project and every attached record and artifact",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/projects/{id}/finish": {
            "post": {
                "tags": ["Projects"],
                "summary": "Archive the project",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/projects/{id}/report": {
            "get": {
                "tags": ["Projects"],
                "summary": "Export the project history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/projects/{id}/files": {
            "post": {
                "tags": ["Files"],
                "summary": "Upload the next design file version",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "is_final", "in": "formData", "type": "boolean"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "File type or size not accepted"}
                }
            }
        },
        "/files/{id}": {
            "delete": {
                "tags": ["Files"],
                "summary": "Delete one file version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/files/{id}/lock": {
            "post": {
                "tags": ["Files"],
                "summary": "Toggle the client download gate",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/client/{token}": {
            "get": {
                "tags": ["Client"],
                "summary": "Client project view",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown token"}
                }
            }
        },
        "/client/{token}/feedback": {
            "post": {
                "tags": ["Client"],
                "summary": "Request a revision or approve the design",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitFeedbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Project completed"},
                    "422": {"description": "Revision quota exhausted"}
                }
            }
        },
        "/client/{token}/files/{id}/download": {
            "get": {
                "tags": ["Client"],
                "summary": "Stream a released file version",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "sig", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File content"},
                    "403": {"description": "File not released"}
                }
            }
        },
        "/client/{token}/files/{id}/download-url": {
            "get": {
                "tags": ["Client"],
                "summary": "Signed, expiring download link",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Project": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "client_name": {"type": "string"},
                "client_email": {"type": "string"},
                "designer_name": {"type": "string"},
                "status": {"type": "string", "enum": ["in_progress", "needs_revision", "finalizing", "completed"]},
                "progress": {"type": "integer"},
                "deadline": {"type": "string"},
                "max_revisions": {"type": "integer"},
                "used_revisions": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "ProjectFile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project_id": {"type": "string"},
                "file_name": {"type": "string"},
                "file_type": {"type": "string"},
                "version": {"type": "integer"},
                "is_latest": {"type": "boolean"},
                "is_downloadable": {"type": "boolean"},
                "size_bytes": {"type": "integer"},
                "uploaded_at": {"type": "string"}
            }
        },
        "Feedback": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project_id": {"type": "string"},
                "comment": {"type": "string"},
                "revision_number": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "CreateProjectRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "client_name": {"type": "string"},
                "client_email": {"type": "string"},
                "description": {"type": "string"},
                "deadline": {"type": "string", "description": "YYYY-MM-DD"},
                "designer_name": {"type": "string"}
            },
            "required": ["title", "client_name"]
        },
        "UpdateProjectRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "deadline": {"type": "string"},
                "status": {"type": "string"},
                "designer_name": {"type": "string"},
                "progress": {"type": "integer"}
            }
        },
        "SubmitFeedbackRequest": {
            "type": "object",
            "properties": {
                "comment": {"type": "string"},
                "action": {"type": "string", "enum": ["revision", "approve"]}
            },
            "required": ["action"]
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
