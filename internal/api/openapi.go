package api

import (
	"github.com/IonMich/instructor-pilot/internal/config"
	"github.com/IonMich/instructor-pilot/pkg/openapi"
)

// BuildSpec assembles the OpenAPI document for the service.
func BuildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Assignment": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "string", Format: "uuid"},
				"name":            {Type: "string"},
				"course":          {Type: "string"},
				"max_page_number": {Type: "integer", Example: 4},
				"created_at":      {Type: "string", Format: "date-time"},
				"updated_at":      {Type: "string", Format: "date-time"},
			},
			Required: []string{"id", "name", "course", "max_page_number"},
		},
		"Submission": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "string", Format: "uuid"},
				"assignment_id": {Type: "string", Format: "uuid"},
				"student":       {Type: "string"},
				"images": {
					Type:        "array",
					Description: "Page-image storage keys, indexable by page.",
					Items:       &openapi.Schema{Type: "string"},
				},
				"version": {
					Description: "Assigned version, null for outliers.",
					Properties: map[string]*openapi.Schema{
						"id":            {Type: "string", Format: "uuid"},
						"name":          {Type: "string"},
						"version_image": {Type: "string"},
					},
				},
			},
			Required: []string{"id", "assignment_id", "images"},
		},
		"SnapshotResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":     {Type: "boolean"},
				"submissions": {Type: "array", Items: openapi.SchemaRef("Submission")},
			},
		},
		"ReviewView": {
			Type:        "object",
			Description: "Complete render of a review session: tabs, panes, workflow state.",
			Properties: map[string]*openapi.Schema{
				"assignment_id":  {Type: "string", Format: "uuid"},
				"submissions":    {Type: "integer"},
				"empty":          {Type: "boolean"},
				"call_to_action": {Type: "string"},
			},
		},
	})

	spec.Components.AddResponses(map[string]*openapi.Response{
		"Error": {
			Description: "Error envelope.",
			Content: map[string]*openapi.MediaType{
				"application/json": {
					Schema: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"error": {Type: "string"},
						},
					},
				},
			},
		},
	})

	assignmentParam := openapi.PathParam("assignmentID", "Assignment identifier")

	spec.Paths["/assignments"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List assignments",
			Tags:    []string{"assignments"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated assignments", "Assignment"),
			},
		},
	}

	spec.Paths["/assignments/{assignmentID}/versions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Read the versioning state of an assignment",
			Tags:       []string{"versions"},
			Parameters: []*openapi.Parameter{assignmentParam},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Snapshot with comments", "SnapshotResponse"),
				404: openapi.ResponseRef("Error"),
			},
		},
	}

	spec.Paths["/assignments/{assignmentID}/versions/compute"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Run a clustering pass on the selected pages",
			Tags:       []string{"versions"},
			Parameters: []*openapi.Parameter{assignmentParam},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Refreshed snapshot", "SnapshotResponse"),
				502: openapi.ResponseRef("Error"),
			},
		},
	}

	spec.Paths["/assignments/{assignmentID}/versions/reset"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Clear version assignments",
			Tags:       []string{"versions"},
			Parameters: []*openapi.Parameter{assignmentParam},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Acknowledgement", "SnapshotResponse"),
			},
		},
	}

	spec.Paths["/assignments/{assignmentID}/review"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Open a review session",
			Tags:       []string{"review"},
			Parameters: []*openapi.Parameter{assignmentParam},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Initial view", "ReviewView"),
				404: openapi.ResponseRef("Error"),
			},
		},
		Get: &openapi.Operation{
			Summary:    "Render the open session",
			Tags:       []string{"review"},
			Parameters: []*openapi.Parameter{assignmentParam},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Current view", "ReviewView"),
				404: openapi.ResponseRef("Error"),
			},
		},
	}

	spec.Paths["/assignments/{assignmentID}/review/reassign/submit"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Reassign the active outlier to the chosen version",
			Tags:       []string{"review"},
			Parameters: []*openapi.Parameter{assignmentParam},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Refreshed view", "ReviewView"),
				409: openapi.ResponseRef("Error"),
			},
		},
	}

	spec.Paths["/submissions/{id}/version"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Move a submission to a version",
			Tags:       []string{"submissions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Submission identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Refreshed snapshot", "SnapshotResponse"),
				404: openapi.ResponseRef("Error"),
			},
		},
	}

	return spec
}
