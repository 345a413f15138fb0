package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"orgchat/internal/adapters/llm"
	"orgchat/internal/adapters/search"
	"orgchat/internal/config"
	"orgchat/internal/core/policy"
)

// Expected CSV header columns
const (
	colEmployeeID = "EEID"
	colFullName   = "Full Name"
	colJobTitle   = "Job Title"
	colDepartment = "Department"
	colBusiness   = "Business Unit"
	colCountry    = "Country"
	colCity       = "City"
	colSalary     = "Annual Salary"
	colBonus      = "Bonus %"
)

func main() {
	csvPath := flag.String("csv", "employee_data.csv", "path to the employee CSV file")
	skipEmbed := flag.Bool("skip-embeddings", false, "index without computing embeddings")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	esClient, err := search.NewClient(cfg.Search)
	if err != nil {
		log.Fatalf("❌ Failed to connect to search backend: %v", err)
	}
	gateway := search.NewGateway(esClient, cfg.Search.Index)

	llmClient := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		GenerateModel:  cfg.LLM.GenerateModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Timeout:        cfg.LLM.Timeout,
	})

	ctx := context.Background()

	if !*skipEmbed {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = llmClient.CheckRunning(checkCtx)
		cancel()
		if err != nil {
			log.Fatalf("❌ LLM backend not reachable (use --skip-embeddings to index without vectors): %v", err)
		}
	}

	if err := gateway.EnsureIndex(ctx); err != nil {
		log.Fatalf("❌ Failed to create index: %v", err)
	}
	log.Printf("✅ Index %s ready", cfg.Search.Index)

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("❌ Failed to open CSV file: %v", err)
	}
	defer file.Close()

	count, err := ingest(ctx, file, gateway, llmClient, *skipEmbed)
	if err != nil {
		log.Fatalf("❌ Ingestion failed: %v", err)
	}
	log.Printf("🎉 Indexed %d employee records", count)
}

// ingest streams CSV rows into the index, one document per employee.
func ingest(ctx context.Context, r io.Reader, gateway *search.Gateway, llmClient *llm.Client, skipEmbed bool) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colEmployeeID, colFullName, colDepartment} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read CSV row: %w", err)
		}

		rec := search.IndexedRecord{
			Text:       recordText(row, field),
			EmployeeID: field(row, colEmployeeID),
			Department: field(row, colDepartment),
			RecordKind: policy.RecordKindEmployee,
		}
		if rec.EmployeeID == "" {
			continue
		}

		if !skipEmbed {
			embedding, err := llmClient.Embed(ctx, rec.Text)
			if err != nil {
				return count, fmt.Errorf("embed record %s: %w", rec.EmployeeID, err)
			}
			rec.Embedding = embedding
		}

		if err := gateway.IndexRecord(ctx, rec.EmployeeID, rec); err != nil {
			return count, err
		}
		count++
		if count%100 == 0 {
			log.Printf("📦 Indexed %d records...", count)
		}
	}
	return count, nil
}

// recordText renders one employee row as the sentence the index searches
// over and the model reads as context.
func recordText(row []string, field func([]string, string) string) string {
	parts := []string{
		fmt.Sprintf("%s works as %s in the %s department",
			field(row, colFullName), field(row, colJobTitle), field(row, colDepartment)),
	}
	if unit := field(row, colBusiness); unit != "" {
		parts = append(parts, fmt.Sprintf("within the %s business unit", unit))
	}
	if city, country := field(row, colCity), field(row, colCountry); city != "" || country != "" {
		parts = append(parts, fmt.Sprintf("based in %s, %s", city, country))
	}
	if salary := field(row, colSalary); salary != "" {
		parts = append(parts, fmt.Sprintf("with an annual salary of %s", salary))
	}
	if bonus := field(row, colBonus); bonus != "" {
		parts = append(parts, fmt.Sprintf("and a bonus of %s", bonus))
	}
	return strings.Join(parts, " ") + "."
}
