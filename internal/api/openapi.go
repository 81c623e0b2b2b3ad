package api

import (
	"net/http"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the API surface.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Claim": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"reference":    {Type: "string", Description: "External claim reference", Example: "CLM-2026-00412"},
				"notes":        {Type: "string"},
				"status":       {Type: "string", Enum: []any{"pending", "queued", "processing", "processed", "failed"}},
				"file_count":   {Type: "integer"},
				"submitted_at": {Type: "string", Format: "date-time"},
				"updated_at":   {Type: "string", Format: "date-time"},
			},
		},
		"CreateClaim": {
			Type:     "object",
			Required: []string{"reference"},
			Properties: map[string]*openapi.Schema{
				"reference": {Type: "string"},
				"notes":     {Type: "string"},
			},
		},
		"Evidence": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"claim_id":     {Type: "string", Format: "uuid"},
				"filename":     {Type: "string"},
				"content_type": {Type: "string"},
				"size_bytes":   {Type: "integer", Format: "int64"},
				"media_kind":   {Type: "string", Enum: []any{"image", "video"}},
				"storage_key":  {Type: "string"},
				"uploaded_at":  {Type: "string", Format: "date-time"},
			},
		},
		"Report": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"claim_id":          {Type: "string", Format: "uuid"},
				"file_count":        {Type: "integer"},
				"ai_detected_count": {Type: "integer"},
				"genuine_count":     {Type: "integer"},
				"risk_score":        {Type: "string", Enum: []any{"Low", "Medium", "High"}},
				"confidence":        {Type: "integer", Description: "Percentage of files determined genuine"},
				"notes":             {Type: "string"},
				"processed_at":      {Type: "string", Format: "date-time"},
			},
		},
		"Verdict": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "string", Format: "uuid"},
				"report_id":       {Type: "string", Format: "uuid"},
				"filename":        {Type: "string"},
				"size_bytes":      {Type: "integer", Format: "int64"},
				"media_kind":      {Type: "string", Enum: []any{"image", "video"}},
				"authenticity":    {Type: "string", Enum: []any{"Likely Genuine", "AI Generated"}},
				"failed_at_layer": {Type: "integer", Description: "Layer that produced the AI determination; 0 when genuine"},
				"generator":       {Type: "string"},
				"details":         {Type: "string"},
				"layers":          {Type: "array", Items: &openapi.Schema{Type: "object"}},
				"duplicate_of":    {Type: "string"},
				"created_at":      {Type: "string", Format: "date-time"},
			},
		},
	})

	addClaimPaths(spec)
	addReportPaths(spec)

	return spec
}

func addClaimPaths(spec *openapi.Spec) {
	spec.Paths["/claims"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List claims",
			Tags:    []string{"claims"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("status", "string", "Filter by claim status", false),
				openapi.QueryParam("reference", "string", "Filter by reference substring", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated claims", "Claim"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create claim",
			Tags:        []string{"claims"},
			RequestBody: openapi.RequestBodyJSON("CreateClaim", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created claim", "Claim"),
				400: openapi.ResponseRef("BadRequest"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/claims/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find claim",
			Tags:       []string{"claims"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Claim", "Claim"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete claim",
			Tags:       []string{"claims"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/claims/{id}/evidence"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List claim evidence",
			Tags:       []string{"claims"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Evidence files", "Evidence"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Attach evidence",
			Description: "Multipart upload of one or more media files. Each file succeeds or fails independently.",
			Tags:        []string{"claims"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Attached evidence", "Evidence"),
				404: openapi.ResponseRef("NotFound"),
				413: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/claims/{id}/submit"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Submit claim for processing",
			Tags:       []string{"claims"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				202: openapi.ResponseJSON("Queued claim", "Claim"),
				404: openapi.ResponseRef("NotFound"),
				422: openapi.ResponseRef("BadRequest"),
			},
		},
	}
}

func addReportPaths(spec *openapi.Spec) {
	spec.Paths["/reports"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List reports",
			Tags:    []string{"reports"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("risk_score", "string", "Filter by risk score", false),
				openapi.QueryParam("min_confidence", "integer", "Minimum confidence percentage", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated reports", "Report"),
			},
		},
	}

	spec.Paths["/reports/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find report",
			Tags:       []string{"reports"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Report", "Report"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete report",
			Tags:       []string{"reports"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/reports/{id}/verdicts"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List report verdicts",
			Tags:       []string{"reports"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Report identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Per-file verdicts", "Verdict"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/reports/claim/{claimId}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find report by claim",
			Tags:       []string{"reports"},
			Parameters: []*openapi.Parameter{openapi.PathParam("claimId", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Report", "Report"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/reports/claim/{claimId}/process"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Process claim synchronously",
			Description: "Runs the authenticity pipeline inline. Primarily for reruns; submitted claims process asynchronously.",
			Tags:        []string{"reports"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("claimId", "Claim identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Report", "Report"),
				404: openapi.ResponseRef("NotFound"),
				422: openapi.ResponseRef("BadRequest"),
			},
		},
	}
}

func serveSpec(mux *http.ServeMux, cfg *config.Config) error {
	data, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return err
	}

	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(data))
	return nil
}
