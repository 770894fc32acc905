// Package fileservice implements the list/download/upload application
// service over the HTTP driver, with an MD5-based, name-keyed local
// cache: matching hashes skip transfers, mismatching hashes abort the
// whole batch rather than overwrite.
package fileservice

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/auth"
	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/client"
	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/settings"
	"github.com/RuhaoT/xjtu-ns-exp-project/pkg/netclient/wire"
)

// ServerFileList is the listing outcome.
type ServerFileList struct {
	Valid        bool
	Files        []FileEntry
	ErrorMessage string
}

// DownloadResult reports a download batch. DownloadedList excludes cache
// hits: those files were already present with matching hashes.
type DownloadResult struct {
	Success        bool
	DownloadedList []string
	ErrorMessage   string
}

// UploadResult reports an upload batch. AlreadyUploaded names files the
// server already held with matching hashes.
type UploadResult struct {
	Success         bool
	UploadedList    []string
	AlreadyUploaded []string
	ErrorMessage    string
}

// Service performs file operations against the remote file service.
type Service struct {
	client  *client.Client
	backend Backend
}

// NewService creates a file service over the given driver and backend.
func NewService(c *client.Client, b Backend) *Service {
	if b == nil {
		b = LocalBackend{}
	}
	return &Service{client: c, backend: b}
}

// FetchServerFileList asks the server for its file inventory.
func (s *Service) FetchServerFileList(ctx context.Context, session *auth.Session, setting *settings.Setting) ServerFileList {
	resp, errMsg := s.post(ctx, session, setting, apiRequest{RequestType: RequestListFiles})
	if errMsg != "" {
		return ServerFileList{Valid: false, ErrorMessage: errMsg}
	}
	return ServerFileList{Valid: true, Files: resp.RequestData}
}

// DownloadBatch fetches the named files into the setting's local
// directory. Files already present with matching hashes are skipped; a
// hash mismatch aborts the whole batch before any file is downloaded.
func (s *Service) DownloadBatch(ctx context.Context, fileNames []string, session *auth.Session, setting *settings.Setting) DownloadResult {
	if setting == nil {
		setting = settings.Default()
	}

	listing := s.FetchServerFileList(ctx, session, setting)
	if !listing.Valid {
		return DownloadResult{
			ErrorMessage: "Error fetching server file list before download: " + listing.ErrorMessage,
		}
	}

	remote := make(map[string]FileEntry, len(listing.Files))
	for _, entry := range listing.Files {
		remote[entry.FileName] = entry
	}

	var wanted []FileEntry
	for _, name := range fileNames {
		entry, ok := remote[name]
		if !ok {
			return DownloadResult{
				ErrorMessage: fmt.Sprintf("File '%s' not found on server", name),
			}
		}

		localPath := filepath.Join(setting.LocalFileDir, name)
		if s.backend.Exists(localPath) {
			localHash, err := s.backend.MD5Sum(localPath)
			if err != nil {
				return DownloadResult{
					ErrorMessage: fmt.Sprintf("Error hashing local file '%s': %v", name, err),
				}
			}
			if localHash == entry.FileHash {
				logrus.Debugf("fileservice: cache hit for %s, skipping download", name)
				continue
			}
			return DownloadResult{
				ErrorMessage: fmt.Sprintf("Hash mismatch for file '%s': local copy differs from server", name),
			}
		}
		wanted = append(wanted, FileEntry{FileName: entry.FileName, FileHash: entry.FileHash})
	}

	if len(wanted) == 0 {
		return DownloadResult{Success: true, DownloadedList: []string{}}
	}

	resp, errMsg := s.post(ctx, session, setting, apiRequest{
		RequestType:  RequestDownloadFile,
		DownloadList: wanted,
	})
	if errMsg != "" {
		return DownloadResult{ErrorMessage: errMsg}
	}

	downloaded := make([]string, 0, len(resp.RequestData))
	for _, entry := range resp.RequestData {
		data, err := base64.StdEncoding.DecodeString(entry.FileData)
		if err != nil {
			return DownloadResult{
				ErrorMessage: fmt.Sprintf("Error decoding file data for '%s': %v", entry.FileName, err),
			}
		}
		localPath := filepath.Join(setting.LocalFileDir, entry.FileName)
		if err := s.backend.WriteFile(localPath, data); err != nil {
			return DownloadResult{
				ErrorMessage: fmt.Sprintf("Error writing file '%s': %v", entry.FileName, err),
			}
		}
		downloaded = append(downloaded, entry.FileName)
	}

	return DownloadResult{Success: true, DownloadedList: downloaded}
}

// UploadBatch uploads the file or directory (walked recursively) at
// path. Files the server already holds with matching hashes are skipped
// and reported as already uploaded; a mismatch aborts the batch.
func (s *Service) UploadBatch(ctx context.Context, path string, session *auth.Session, setting *settings.Setting) UploadResult {
	if setting == nil {
		setting = settings.Default()
	}

	paths, err := s.backend.Enumerate(path)
	if err != nil {
		return UploadResult{
			ErrorMessage: fmt.Sprintf("Error enumerating upload path '%s': %v", path, err),
		}
	}

	proposed := make([]FileEntry, 0, len(paths))
	for _, p := range paths {
		data, err := s.backend.ReadFile(p)
		if err != nil {
			return UploadResult{
				ErrorMessage: fmt.Sprintf("Error reading file '%s': %v", p, err),
			}
		}
		proposed = append(proposed, FileEntry{
			FileName: filepath.Base(p),
			FileHash: MD5Hex(data),
			FileData: base64.StdEncoding.EncodeToString(data),
		})
	}

	listing := s.FetchServerFileList(ctx, session, setting)
	if !listing.Valid {
		return UploadResult{
			ErrorMessage: "Error fetching server file list before upload: " + listing.ErrorMessage,
		}
	}
	remote := make(map[string]FileEntry, len(listing.Files))
	for _, entry := range listing.Files {
		remote[entry.FileName] = entry
	}

	var (
		toUpload        []FileEntry
		alreadyUploaded []string
	)
	for _, entry := range proposed {
		if existing, ok := remote[entry.FileName]; ok {
			if existing.FileHash == entry.FileHash {
				logrus.Debugf("fileservice: %s already on server with matching hash", entry.FileName)
				alreadyUploaded = append(alreadyUploaded, entry.FileName)
				continue
			}
			return UploadResult{
				ErrorMessage: fmt.Sprintf("Hash mismatch for file '%s': server copy differs from local", entry.FileName),
			}
		}
		toUpload = append(toUpload, entry)
	}

	if len(toUpload) == 0 {
		return UploadResult{
			Success:         true,
			UploadedList:    []string{},
			AlreadyUploaded: alreadyUploaded,
		}
	}

	resp, errMsg := s.post(ctx, session, setting, apiRequest{
		RequestType: RequestUploadFile,
		UploadList:  toUpload,
	})
	if errMsg != "" {
		return UploadResult{ErrorMessage: errMsg}
	}

	uploaded := make([]string, 0, len(resp.RequestData))
	for _, entry := range resp.RequestData {
		uploaded = append(uploaded, entry.FileName)
	}

	return UploadResult{
		Success:         true,
		UploadedList:    uploaded,
		AlreadyUploaded: alreadyUploaded,
	}
}

// post sends one JSON envelope to the file-service endpoint with the
// session cookie attached and maps every failure mode to a message:
// invalid envelope, non-200 status, undecodable body, or a server-side
// request_success=false.
func (s *Service) post(ctx context.Context, session *auth.Session, setting *settings.Setting, api apiRequest) (*apiResponse, string) {
	if session == nil {
		return nil, "No session: log in before using the file service"
	}
	if setting == nil {
		setting = settings.Default()
	}

	payload, length, err := encodeAPIRequest(api)
	if err != nil {
		return nil, fmt.Sprintf("Error encoding file service request: %v", err)
	}

	req := setting.CloneTemplate()
	req.URL = setting.FileServiceURL
	req.Method = wire.MethodPOST
	req.Server = session.Server
	req.Cookie = session.Token
	req.PayloadType = wire.PayloadJSON
	req.PayloadBytes = payload
	req.ContentLengthBeforeEncoding = length

	env := s.client.Do(ctx, &req)
	if !env.Valid {
		return nil, "Invalid response from server: " + env.ErrorMessage
	}

	if env.Response.StatusCode != 200 {
		message := client.StatusMessage(env.Response.StatusCode)
		if message == "" {
			message = fmt.Sprintf("Unknown error occurred, status code: %d", env.Response.StatusCode)
		}
		return nil, message
	}

	var resp apiResponse
	if err := json.Unmarshal(env.Response.PayloadBytes, &resp); err != nil {
		return nil, fmt.Sprintf("Error decoding file service response: %v", err)
	}
	if !resp.RequestSuccess {
		message := resp.ErrorMessage
		if message == "" {
			message = "File service reported failure without a message"
		}
		return nil, message
	}
	return &resp, ""
}
