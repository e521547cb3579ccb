package imagegen

import "time"

// the Runware WebSocket inference endpoint
const defaultEndpoint = "wss://ws-api.runware.ai/v1"

// how long a single inference task may take before the caller gives up
const defaultTaskTimeout = 60 * time.Second

// AgeGroup selects how intricate the generated line art should be.
type AgeGroup string

const (
	AgeToddler   AgeGroup = "toddler"
	AgePreschool AgeGroup = "preschool"
	AgeSchool    AgeGroup = "school"
	AgeTeen      AgeGroup = "teen"
	AgeAdult     AgeGroup = "adult"
)

// GenerateParams describes one coloring-page inference request.
type GenerateParams struct {
	PositivePrompt string
	Model          string
	Width          int
	Height         int
	OutputFormat   string
	CFGScale       float64
	Scheduler      string
	Strength       float64
	AgeGroup       AgeGroup
}

// GeneratedImage is a finished coloring page.
type GeneratedImage struct {
	ImageURL       string `json:"image_url"`
	PositivePrompt string `json:"positive_prompt"`
	Seed           int64  `json:"seed"`
	NSFWContent    bool   `json:"nsfw_content"`
}

// wire format: every request is an array of task objects
type task struct {
	TaskType              string   `json:"taskType"`
	TaskUUID              string   `json:"taskUUID,omitempty"`
	APIKey                string   `json:"apiKey,omitempty"`
	ConnectionSessionUUID string   `json:"connectionSessionUUID,omitempty"`
	PositivePrompt        string   `json:"positivePrompt,omitempty"`
	Model                 string   `json:"model,omitempty"`
	Width                 int      `json:"width,omitempty"`
	Height                int      `json:"height,omitempty"`
	NumberResults         int      `json:"numberResults,omitempty"`
	OutputFormat          string   `json:"outputFormat,omitempty"`
	Steps                 int      `json:"steps,omitempty"`
	CFGScale              float64  `json:"CFGScale,omitempty"`
	Scheduler             string   `json:"scheduler,omitempty"`
	Strength              float64  `json:"strength,omitempty"`
	Lora                  []string `json:"lora,omitempty"`
}

type responseItem struct {
	TaskType              string `json:"taskType"`
	TaskUUID              string `json:"taskUUID"`
	ConnectionSessionUUID string `json:"connectionSessionUUID"`
	ImageURL              string `json:"imageURL"`
	PositivePrompt        string `json:"positivePrompt"`
	Seed                  int64  `json:"seed"`
	NSFWContent           bool   `json:"NSFWContent"`
}

type responseError struct {
	TaskUUID string `json:"taskUUID"`
	Message  string `json:"message"`
}

type responseEnvelope struct {
	Data         []responseItem  `json:"data"`
	Errors       []responseError `json:"errors"`
	ErrorMessage string          `json:"errorMessage"`
}

type taskResult struct {
	item responseItem
	err  error
}
