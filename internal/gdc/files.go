package gdc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/maraichr/gdcgraph/internal/config"
	"github.com/maraichr/gdcgraph/internal/tsv"
	"github.com/maraichr/gdcgraph/pkg/apierr"
)

// manifestFields are the file metadata columns requested from /files.
var manifestFields = []string{
	"file_name",
	"experimental_strategy",
	"cases.case_id",
	"cases.submitter_id",
	"cases.samples.sample_type",
	"cases.disease_type",
	"cases.project.project_id",
}

// FileFilter selects files by primary site, experimental strategy and data format.
type FileFilter struct {
	PrimarySite string
	Strategies  []string
	DataFormat  string
	Size        int
}

// FilterFromConfig builds the configured download batch filter.
func FilterFromConfig(cfg config.GDCConfig) FileFilter {
	return FileFilter{
		PrimarySite: cfg.PrimarySite,
		Strategies:  cfg.Strategies,
		DataFormat:  cfg.DataFormat,
		Size:        cfg.BatchSize,
	}
}

type filterOp struct {
	Op      string `json:"op"`
	Content any    `json:"content"`
}

type inContent struct {
	Field string   `json:"field"`
	Value []string `json:"value"`
}

type searchRequest struct {
	Filters filterOp `json:"filters"`
	Fields  string   `json:"fields"`
	Format  string   `json:"format"`
	Size    int      `json:"size"`
}

func (f FileFilter) request() searchRequest {
	in := func(field string, values ...string) filterOp {
		return filterOp{Op: "in", Content: inContent{Field: field, Value: values}}
	}
	return searchRequest{
		Filters: filterOp{Op: "and", Content: []filterOp{
			in("cases.project.primary_site", f.PrimarySite),
			in("files.experimental_strategy", f.Strategies...),
			in("files.data_format", f.DataFormat),
		}},
		Fields: strings.Join(manifestFields, ","),
		Format: "TSV",
		Size:   f.Size,
	}
}

// SearchFiles runs a filtered file search and saves the TSV manifest in
// outDir. It returns the manifest's file name, relative to outDir.
func (c *Client) SearchFiles(ctx context.Context, f FileFilter, outDir string) (string, error) {
	c.logger.Info("searching files",
		slog.Int("size", f.Size),
		slog.String("primary_site", f.PrimarySite),
		slog.String("strategies", strings.Join(f.Strategies, ",")),
		slog.String("format", f.DataFormat))

	resp, err := c.postJSON(ctx, "/files", f.request())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierr.RemoteAPIWrap(resp.Request.URL.String(), fmt.Errorf("read manifest: %w", err))
	}

	name := c.manifestName(f)
	path := filepath.Join(outDir, name)
	manifest := strings.ReplaceAll(string(body), "\r\n", "\n")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	c.logger.Debug("saved manifest", slog.String("file", path))
	return name, nil
}

// manifestName is <site>_<strategies>_<format>_<size>_<yymmddHHMMSS>.tsv.
func (c *Client) manifestName(f FileFilter) string {
	parts := []string{
		f.PrimarySite,
		strings.Join(f.Strategies, "_"),
		f.DataFormat,
		strconv.Itoa(f.Size),
		c.now().Format("060102150405"),
	}
	return strings.Join(parts, "_") + ".tsv"
}

var filenameRe = regexp.MustCompile(`filename=(.+)`)

// attachmentName extracts the file name from a Content-Disposition header.
func attachmentName(cd string) (string, bool) {
	if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
		return params["filename"], true
	}
	if m := filenameRe.FindStringSubmatch(cd); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), `"`), true
	}
	return "", false
}

// DownloadData downloads data file id into outDir under the name the API
// sends in Content-Disposition, and returns the local path.
func (c *Client) DownloadData(ctx context.Context, id, outDir string) (string, error) {
	c.logger.Info("downloading data file", slog.String("file_id", id))
	url := c.baseURL + "/data/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name, ok := attachmentName(resp.Header.Get("Content-Disposition"))
	if !ok {
		return "", apierr.RemoteAPI(url, resp.StatusCode, "missing Content-Disposition filename")
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", apierr.RemoteAPI(url, resp.StatusCode, "invalid filename "+name)
	}

	path := filepath.Join(outDir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", apierr.RemoteAPIWrap(url, fmt.Errorf("read body: %w", err))
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	if c.archive != nil {
		if err := c.archive.ArchiveFile(ctx, name, path); err != nil {
			return "", fmt.Errorf("archive %s: %w", name, err)
		}
	}
	return path, nil
}

// BulkResult names what a bulk download wrote.
type BulkResult struct {
	Manifest string
	Files    []string
}

// BulkDownload searches with f, saves the manifest and downloads every data
// file whose name has a recognized expression suffix.
func (c *Client) BulkDownload(ctx context.Context, f FileFilter, outDir string) (BulkResult, error) {
	c.logger.Info("initiating bulk download", slog.String("out_dir", outDir))
	manifest, err := c.SearchFiles(ctx, f, outDir)
	if err != nil {
		return BulkResult{}, err
	}
	res := BulkResult{Manifest: manifest}

	if c.archive != nil {
		if err := c.archive.ArchiveFile(ctx, manifest, filepath.Join(outDir, manifest)); err != nil {
			return res, fmt.Errorf("archive %s: %w", manifest, err)
		}
	}

	rows, err := tsv.ReadMetadata(filepath.Join(outDir, manifest))
	if err != nil {
		return res, fmt.Errorf("read manifest: %w", err)
	}
	for _, row := range rows {
		path, err := c.DownloadData(ctx, row.ID, outDir)
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, path)
	}
	c.logger.Info("bulk download complete",
		slog.String("manifest", manifest),
		slog.Int("files", len(res.Files)))
	return res, nil
}
