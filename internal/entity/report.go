package entity

// ProcessingResult summarizes one file's trip through the pipeline.
type ProcessingResult struct {
	Success               bool    `json:"success"`
	Message               string  `json:"message"`
	CSVFileID             string  `json:"csv_file_id,omitempty"`
	CSVFileURL            string  `json:"csv_file_url,omitempty"`
	TransactionsCount     int     `json:"transactions_count"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// FailedFile records one file the batch could not process.
type FailedFile struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// ProcessedFile records one file the batch processed successfully, in
// discovery order.
type ProcessedFile struct {
	FileName string           `json:"file_name"`
	Result   ProcessingResult `json:"result"`
}

// BatchReport aggregates a whole batch run.
// Invariant: TotalFiles == len(ProcessedFiles) + len(FailedFiles).
type BatchReport struct {
	Message        string          `json:"message"`
	TotalFiles     int             `json:"total_files"`
	ProcessedFiles []ProcessedFile `json:"processed_files"`
	FailedFiles    []FailedFile    `json:"failed_files"`
}
