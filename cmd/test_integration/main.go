// Integration smoke client: drives a running gypsum server end to end
// with two real PDFs and prints the resulting report.
//
// Usage: test_integration <inspection.pdf> <thermal.pdf>
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if v := os.Getenv("GYPSUM_URL"); v != "" {
		baseURL = v
	}
	if len(os.Args) != 3 {
		fmt.Println("usage: test_integration <inspection.pdf> <thermal.pdf>")
		os.Exit(1)
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Create a run from the two source PDFs
	fmt.Println("1. Creating Run...")
	runID, ok := createRun(os.Args[1], os.Args[2])
	if !ok {
		fmt.Println("FAILED: Create run")
		os.Exit(1)
	}
	fmt.Println("PASSED: Create run", runID)

	// 2. Run the full pipeline and poll until it settles
	fmt.Println("2. Running Pipeline...")
	if !post("/api/runs/"+runID+"/pipeline", http.StatusAccepted) {
		fmt.Println("FAILED: Start pipeline")
		os.Exit(1)
	}
	status := waitForRun(runID, 10*time.Minute)
	if status != "done" {
		fmt.Println("FAILED: Pipeline finished with status", status)
		os.Exit(1)
	}
	fmt.Println("PASSED: Pipeline")

	// 3. Fetch the rendered report
	fmt.Println("3. Fetching Report...")
	resp, err := http.Get(baseURL + "/api/runs/" + runID + "/artifacts/DDR_Report.md")
	if err != nil {
		fmt.Printf("Error fetching report: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Println("FAILED: Fetch report, status", resp.StatusCode)
		os.Exit(1)
	}
	report, _ := io.ReadAll(resp.Body)
	fmt.Printf("Report (%d bytes):\n%s\n", len(report), string(report))
	fmt.Println("PASSED: Fetch report")
}

func createRun(inspectionPath, thermalPath string) (string, bool) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	files := []struct{ field, path string }{
		{"inspection", inspectionPath},
		{"thermal", thermalPath},
	}
	for _, f := range files {
		src, err := os.Open(f.path)
		if err != nil {
			fmt.Printf("Error opening %s: %v\n", f.path, err)
			return "", false
		}
		part, err := w.CreateFormFile(f.field, filepath.Base(f.path))
		if err == nil {
			_, err = io.Copy(part, src)
		}
		src.Close()
		if err != nil {
			fmt.Printf("Error attaching %s: %v\n", f.path, err)
			return "", false
		}
	}
	_ = w.WriteField("property_name", "Integration Test Property")
	_ = w.Close()

	resp, err := http.Post(baseURL+"/api/runs", w.FormDataContentType(), &buf)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return "", false
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(body))
		return "", false
	}

	var run struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &run); err != nil || run.ID == "" {
		fmt.Printf("Bad run response: %s\n", string(body))
		return "", false
	}
	return run.ID, true
}

func post(endpoint string, want int) bool {
	resp, err := http.Post(baseURL+endpoint, "application/json", nil)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(body))
		return false
	}
	fmt.Printf("Response: %s\n", string(body))
	return true
}

func waitForRun(runID string, timeout time.Duration) string {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/runs/" + runID)
		if err != nil {
			fmt.Printf("Error polling run: %v\n", err)
			time.Sleep(2 * time.Second)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var view struct {
			Run struct {
				Status string `json:"status"`
				Stage  string `json:"stage"`
				Error  string `json:"error"`
			} `json:"run"`
		}
		if err := json.Unmarshal(body, &view); err == nil {
			fmt.Printf("  stage=%s status=%s\n", view.Run.Stage, view.Run.Status)
			if view.Run.Status == "done" || view.Run.Status == "failed" {
				if view.Run.Error != "" {
					fmt.Println("  error:", view.Run.Error)
				}
				return view.Run.Status
			}
		}
		time.Sleep(2 * time.Second)
	}
	return "timeout"
}
