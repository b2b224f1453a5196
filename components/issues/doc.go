// Package issues provides an accessibility issue tracker component: an HTML
// page listing the issues recorded against a project, plus JSON endpoints that
// create and update issues and return refreshed table rows.
//
// The POST endpoints speak the submission envelope consumed by pkg/intercept:
// {"success": bool, "message": string, "issues_html": string}. Requests must
// carry the X-Requested-With marker and a CSRF token minted by the page
// handler. Form payloads are validated against the embedded OpenAPI contract
// under contract/openapi.yaml.
//
// The component is storage-agnostic through the Store interface; a seeded
// in-memory store is the default and a PostgreSQL store is provided for
// persistent deployments.
package issues
