package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// MarkAttendanceRequest documents the single-mark payload
type MarkAttendanceRequest struct {
	StudentID  int64   `json:"student_id" example:"42"`
	Date       string  `json:"date" example:"2024-03-01"`
	Status     string  `json:"status" example:"present"`
	Method     string  `json:"method" example:"face"`
	Confidence float64 `json:"confidence" example:"0.91"`
}

// MarkAttendanceResponse documents the single-mark result
type MarkAttendanceResponse struct {
	Success   bool   `json:"success" example:"true"`
	StudentID int64  `json:"student_id" example:"42"`
	Date      string `json:"date" example:"2024-03-01"`
}

// SyncAttendanceRequest documents the batch payload
type SyncAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"records"`
}

// SyncAttendanceResponse documents the batch result
type SyncAttendanceResponse struct {
	Success  bool  `json:"success" example:"true"`
	Inserted int64 `json:"inserted" example:"12"`
}

// StudentResponse documents a roster entry
type StudentResponse struct {
	ID   int64  `json:"id" example:"42"`
	Roll string `json:"roll" example:"r-042"`
	Name string `json:"name" example:"Ada Lovelace"`
}

// ReferenceFaceResponse documents one labeled reference descriptor
type ReferenceFaceResponse struct {
	StudentID int64     `json:"student_id" example:"42"`
	Roll      string    `json:"roll" example:"r-042"`
	Name      string    `json:"name" example:"Ada Lovelace"`
	Embedding []float32 `json:"embedding"`
}

// RegisterFaceRequest documents the enrollment payload
type RegisterFaceRequest struct {
	StudentID int64     `json:"student_id" example:"42"`
	Embedding []float32 `json:"embedding"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"invalid_payload"`
	Message string `json:"message" example:"Missing or malformed request fields"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Classmark Attendance API",
		Version:     "v1.0.0",
		Description: "Face-recognition classroom attendance: roster, reference embeddings, and the duplicate-safe attendance store",
		Host:        "localhost:3000",
		Path:        "/api/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /api/v1/attendance/mark
		endpoint.New(
			endpoint.POST,
			"/attendance/mark",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Mark attendance for one student"),
			endpoint.WithDescription("Persists a single attendance mark. At most one record may exist per (student_id, date); a duplicate is reported as a conflict, which clients treat as success-equivalent."),
			endpoint.WithBody(MarkAttendanceRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MarkAttendanceResponse{}, "201", "Attendance marked"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "invalid_payload", Message: "Missing or malformed request fields"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "unauthorized", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "already_marked", Message: "Attendance already marked for this student today"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "internal_error", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /api/v1/attendance/sync
		endpoint.New(
			endpoint.POST,
			"/attendance/sync",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Sync a batch of attendance records"),
			endpoint.WithDescription("Bulk insert used by agents flushing their offline queue. Applies the same per-day uniqueness as the single-mark path; duplicates are skipped and excluded from the inserted count."),
			endpoint.WithBody(SyncAttendanceRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SyncAttendanceResponse{}, "200", "Batch processed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "no_records", Message: "Records array must be a non-empty list"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "unauthorized", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "internal_error", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /api/v1/attendance
		endpoint.New(
			endpoint.GET,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List attendance for one day"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("Calendar day (YYYY-MM-DD, default today)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]MarkAttendanceResponse{}, "200", "Records for the day"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "invalid_payload", Message: "Malformed date"}, "400", "Bad Request"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /api/v1/embeddings
		endpoint.New(
			endpoint.GET,
			"/embeddings",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Download the labeled reference set"),
			endpoint.WithDescription("Returns every stored reference descriptor joined with its student. Capture agents rebuild their matcher from this payload at session start."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]ReferenceFaceResponse{}, "200", "Reference set"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "internal_error", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /api/v1/face/register
		endpoint.New(
			endpoint.POST,
			"/face/register",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Register an additional reference descriptor"),
			endpoint.WithDescription("Purely additive; a student may hold multiple reference descriptors. Running agents must refresh their reference set before the new descriptor is honored."),
			endpoint.WithBody(RegisterFaceRequest{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SyncAttendanceResponse{}, "200", "Descriptor stored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "invalid_payload", Message: "Missing or malformed request fields"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "student_not_found", Message: "Student not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /api/v1/students
		endpoint.New(
			endpoint.GET,
			"/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("List students"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]StudentResponse{}, "200", "Roster"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /api/v1/students
		endpoint.New(
			endpoint.POST,
			"/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Create a student"),
			endpoint.WithBody(StudentResponse{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentResponse{}, "201", "Student created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "invalid_payload", Message: "Missing or malformed request fields"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "duplicate_roll", Message: "A student with this roll already exists"}, "409", "Conflict"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// PUT /api/v1/students/{id}
		endpoint.New(
			endpoint.PUT,
			"/students/{id}",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Update a student"),
			endpoint.WithBody(StudentResponse{}),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("id", parameter.Path, parameter.WithDescription("Student id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentResponse{}, "200", "Student updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "student_not_found", Message: "Student not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "duplicate_roll", Message: "A student with this roll already exists"}, "409", "Conflict"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /api/v1/students/{id}
		endpoint.New(
			endpoint.DELETE,
			"/students/{id}",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Delete a student"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("id", parameter.Path, parameter.WithDescription("Student id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentResponse{}, "200", "Student deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "student_not_found", Message: "Student not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
