package fileservice

import "github.com/goccy/go-json"

// RequestType selects the file-service operation.
type RequestType string

const (
	RequestListFiles    RequestType = "list_files"
	RequestDownloadFile RequestType = "download_file"
	RequestUploadFile   RequestType = "upload_file"
)

// FileEntry is one remote file: the name is its identity within a
// server, the hash is lowercase-hex MD5 over the raw bytes, and
// FileData, when present, carries the content as base64 ASCII.
type FileEntry struct {
	FileName string `json:"file_name"`
	FileHash string `json:"file_hash,omitempty"`
	FileData string `json:"file_data,omitempty"`
}

// apiRequest is the JSON envelope posted to the file-service endpoint.
type apiRequest struct {
	RequestType  RequestType `json:"request_type"`
	DownloadList []FileEntry `json:"request_download_file_list,omitempty"`
	UploadList   []FileEntry `json:"request_upload_file_list,omitempty"`
}

// apiResponse is the JSON envelope the file service answers with.
type apiResponse struct {
	RequestSuccess bool        `json:"request_success"`
	RequestData    []FileEntry `json:"request_data,omitempty"`
	ErrorMessage   string      `json:"error_message,omitempty"`
}

// encodeAPIRequest marshals the envelope and returns it with its
// pre-encoding byte length.
func encodeAPIRequest(r apiRequest) ([]byte, int, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, 0, err
	}
	return data, len(data), nil
}
