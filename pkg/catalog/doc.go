// Package catalog loads resource family catalogs from JSON or YAML files and
// ships the default MDS catalog. Catalogs can be exported as OpenAPI 3
// documents.
package catalog
