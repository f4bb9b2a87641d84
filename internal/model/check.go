package model

const CheckIDLength = 20

type Check struct {
	ID             string `json:"id"`
	UserEmail      string `json:"userEmail"`
	Protocol       string `json:"protocol"`
	URL            string `json:"url"`
	Method         string `json:"method"`
	SuccessCodes   []int  `json:"successCodes"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

var CheckProtocols = []string{"http", "https"}
var CheckMethods = []string{"get", "post", "put", "delete"}

const (
	MinCheckTimeout = 1
	MaxCheckTimeout = 5
)
