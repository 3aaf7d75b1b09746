package predictions

// Summary is the response of the predict endpoint.
type Summary struct {
	Environment  string `json:"environment"`
	ModelName    string `json:"model_name"`
	ModelVersion string `json:"model_version"`
	InputTable   string `json:"input_table"`
	OutputTable  string `json:"output_table"`
	RowsWritten  int    `json:"rows_written"`
}
