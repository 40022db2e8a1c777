package common

// ApiError is the failure body of every endpoint.
type ApiError struct {
	Error string `json:"error"`
	// TransactionHash is set when the failure happened after submission.
	TransactionHash string `json:"transactionHash,omitempty"`
}

// TxResponse is the success body of every transaction endpoint.
type TxResponse struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status,omitempty"`
	VMStatus        string `json:"vmStatus,omitempty"`
	FeePayer        string `json:"feePayer,omitempty"`
}

// Exception describes an error response before it is written.
type Exception struct {
	Code    int
	Message string
	TxHash  string
}
