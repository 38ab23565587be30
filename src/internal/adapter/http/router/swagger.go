package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func registerSwaggerRoutes(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	r.Get("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	r.Get("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Ledger Engine API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Ledger Engine API",
    "version": "1.0.0"
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {"type": "http", "scheme": "basic"}
    }
  },
  "security": [{"BasicAuth": []}],
  "paths": {
    "/customers": {
      "post": {
        "summary": "Register customer",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name", "email"],
                "properties": {
                  "name": {"type": "string"},
                  "email": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Created"},
          "400": {"description": "Validation error"},
          "401": {"description": "Unauthorized"}
        }
      }
    },
    "/customers/{customerID}": {
      "get": {
        "summary": "Get customer",
        "parameters": [{"name": "customerID", "in": "path", "required": true, "schema": {"type": "integer"}}],
        "responses": {
          "200": {"description": "OK"},
          "404": {"description": "Not found"}
        }
      }
    },
    "/accounts": {
      "post": {
        "summary": "Open account",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["customerId"],
                "properties": {
                  "customerId": {"type": "integer"},
                  "initialBalance": {"type": "string", "example": "100.00"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Created"},
          "400": {"description": "Validation error"},
          "422": {"description": "Unknown customer"}
        }
      },
      "get": {
        "summary": "List accounts with total balance",
        "responses": {
          "200": {"description": "OK"}
        }
      }
    },
    "/accounts/{accountID}/balance": {
      "get": {
        "summary": "Get balance",
        "parameters": [{"name": "accountID", "in": "path", "required": true, "schema": {"type": "integer"}}],
        "responses": {
          "200": {"description": "OK"},
          "404": {"description": "Account not found"}
        }
      }
    },
    "/accounts/transfer": {
      "post": {
        "summary": "Transfer funds",
        "parameters": [
          {"name": "Idempotency-Key", "in": "header", "required": false, "schema": {"type": "string"}}
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["fromAccountId", "toAccountId", "amount"],
                "properties": {
                  "fromAccountId": {"type": "integer"},
                  "toAccountId": {"type": "integer"},
                  "amount": {"type": "string", "example": "40.00"},
                  "idempotencyKey": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {
          "201": {"description": "Applied"},
          "200": {"description": "Replayed; X-Idempotency-Replayed header is set"},
          "400": {"description": "Validation error"},
          "404": {"description": "Account not found"},
          "422": {"description": "Insufficient funds"}
        }
      }
    },
    "/transfers/{idempotencyKey}": {
      "get": {
        "summary": "Get transfer by idempotency key",
        "parameters": [{"name": "idempotencyKey", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {
          "200": {"description": "OK"},
          "404": {"description": "Transfer not found"}
        }
      }
    },
    "/health": {
      "get": {
        "summary": "Liveness probe",
        "security": [],
        "responses": {"200": {"description": "OK"}}
      }
    }
  }
}`
