package invoice

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		storage     *mockStorage
		extractor   *mockExtractor
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		extractor = newMockExtractor()
		auth = BasicAuth{}
	})

	// JustBeforeEach lets nested BeforeEach blocks adjust auth and mocks first.
	JustBeforeEach(func() {
		service := NewServiceWithDeps(db, extractor, storage,
			&mockIDGenerator{id: "test-id-123"},
			&mockTimeSource{now: time.Date(2024, 3, 12, 14, 25, 0, 0, time.UTC)})
		server := NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.Handler().ServeHTTP)
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	do := func(method, path string, body io.Reader, contentType string) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, body)
		Expect(err).NotTo(HaveOccurred())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(resp.Body.Close)
		return resp
	}

	readBody := func(resp *http.Response) string {
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	upload := func(filename, partContentType string, data []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if partContentType != "" {
			header.Set("Content-Type", partContentType)
		}
		part, err := mw.CreatePart(header)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())
		return do(http.MethodPost, "/api/invoices", &buf, mw.FormDataContentType())
	}

	Describe("GET /", func() {
		It("serves the upload page", func() {
			resp := do(http.MethodGet, "/", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
			Expect(readBody(resp)).To(ContainSubstring("Trích Xuất Thông Tin Hóa Đơn"))
		})
	})

	Describe("unknown paths", func() {
		It("return not found", func() {
			resp := do(http.MethodGet, "/nope", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("OPTIONS preflight", func() {
		It("answers with CORS headers", func() {
			resp := do(http.MethodOptions, "/api/invoices", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("POST /api/invoices", func() {
		When("a supported image is uploaded", func() {
			It("returns the created record", func() {
				resp := upload("hoa-don.jpg", "image/jpeg", []byte("fake image"))
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var record Record
				Expect(json.NewDecoder(resp.Body).Decode(&record)).To(Succeed())
				Expect(record.ID).To(Equal("test-id-123"))
				Expect(record.InvoiceNumber).To(Equal("HD-000482"))
				Expect(record.Status).To(Equal(extraction.StatusSuccess))
				Expect(db.records).To(HaveKey("test-id-123"))
			})
		})

		When("extraction fails", func() {
			BeforeEach(func() {
				extractor.result = extraction.FailedResult(io.ErrUnexpectedEOF)
			})

			It("still records the upload with a failed status", func() {
				resp := upload("hoa-don.png", "image/png", []byte("fake image"))
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var record Record
				Expect(json.NewDecoder(resp.Body).Decode(&record)).To(Succeed())
				Expect(record.Status).To(Equal(extraction.StatusFailed))
				Expect(record.TotalAmount).To(Equal(extraction.FailedTotalAmount))
			})
		})

		When("the file type is unsupported", func() {
			It("returns bad request with a JSON error", func() {
				resp := upload("notes.txt", "text/plain", []byte("hello"))
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
				Expect(readBody(resp)).To(ContainSubstring("unsupported file type"))
			})
		})

		When("no file is sent", func() {
			It("returns bad request", func() {
				var buf bytes.Buffer
				mw := multipart.NewWriter(&buf)
				Expect(mw.WriteField("other", "x")).To(Succeed())
				Expect(mw.Close()).To(Succeed())

				resp := do(http.MethodPost, "/api/invoices", &buf, mw.FormDataContentType())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the body is not multipart", func() {
			It("returns bad request", func() {
				resp := do(http.MethodPost, "/api/invoices", bytes.NewBufferString("{}"), "application/json")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("with stored records", func() {
		BeforeEach(func() {
			storage.files["a_hoa-don.png"] = []byte("png bytes")
			db.records["a"] = &Record{
				ID:            "a",
				Filename:      "a_hoa-don.png",
				ContentType:   "image/png",
				InvoiceNumber: "123456",
				TotalAmount:   "150000",
				Status:        extraction.StatusSuccess,
				CreatedAt:     time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
			}
			db.records["b"] = &Record{
				ID:        "b",
				Status:    extraction.StatusFailed,
				CreatedAt: time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
			}
		})

		It("lists records newest first", func() {
			resp := do(http.MethodGet, "/api/invoices", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var records []*Record
			Expect(json.NewDecoder(resp.Body).Decode(&records)).To(Succeed())
			Expect(records).To(HaveLen(2))
			Expect(records[0].ID).To(Equal("b"))
		})

		It("returns a single record", func() {
			resp := do(http.MethodGet, "/api/invoices/a", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring(`"invoice_number":"123456"`))
		})

		It("returns not found for an unknown record", func() {
			resp := do(http.MethodGet, "/api/invoices/zzz", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("serves the stored image", func() {
			resp := do(http.MethodGet, "/api/invoices/a/file", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("image/png"))
			Expect(readBody(resp)).To(Equal("png bytes"))
		})

		It("serves the single-result CSV as an attachment", func() {
			resp := do(http.MethodGet, "/api/invoices/a/csv", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("invoice_a.csv"))
			Expect(readBody(resp)).To(Equal("field,value\ninvoice_number,123456\ntotal_amount,150000\n"))
		})

		It("returns not found for the image of an unknown record", func() {
			resp := do(http.MethodGet, "/api/invoices/zzz/file", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns not found when the stored image is gone", func() {
			resp := do(http.MethodGet, "/api/invoices/b/file", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns not found for the CSV of an unknown record", func() {
			resp := do(http.MethodGet, "/api/invoices/zzz/csv", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.getErr = errors.New("database locked")
			})

			It("returns an internal error for a single record", func() {
				resp := do(http.MethodGet, "/api/invoices/a", nil, "")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(readBody(resp)).NotTo(ContainSubstring("not found"))
			})

			It("returns an internal error for the stored image", func() {
				resp := do(http.MethodGet, "/api/invoices/a/file", nil, "")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})

			It("returns an internal error for the single-result CSV", func() {
				resp := do(http.MethodGet, "/api/invoices/a/csv", nil, "")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})

		When("the image storage fails", func() {
			BeforeEach(func() {
				storage.getErr = errors.New("permission denied")
			})

			It("returns an internal error for the stored image", func() {
				resp := do(http.MethodGet, "/api/invoices/a/file", nil, "")
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			})
		})

		It("deletes a record", func() {
			resp := do(http.MethodDelete, "/api/invoices/a", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.records).NotTo(HaveKey("a"))
			Expect(storage.files).To(BeEmpty())
		})

		It("returns not found when deleting an unknown record", func() {
			resp := do(http.MethodDelete, "/api/invoices/zzz", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("clears the history", func() {
			resp := do(http.MethodDelete, "/api/invoices", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(MatchJSON(`{"removed": 2}`))
			Expect(db.records).To(BeEmpty())
		})

		It("reports stats", func() {
			resp := do(http.MethodGet, "/api/stats", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(MatchJSON(`{"total": 2, "success": 1, "partial": 0, "failed": 1}`))
		})

		It("exports the history as CSV", func() {
			resp := do(http.MethodGet, "/api/export/csv", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/csv; charset=utf-8"))
			Expect(readBody(resp)).To(HavePrefix("id,filename,invoice_number"))
		})

		It("exports the history as XLSX", func() {
			resp := do(http.MethodGet, "/api/export/xlsx", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("invoices.xlsx"))
			Expect(readBody(resp)).To(HavePrefix("PK"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
		})

		It("rejects requests without credentials", func() {
			resp := do(http.MethodGet, "/api/invoices", nil, "")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Invoice Extractor"))
		})

		It("accepts valid credentials", func() {
			req, err := http.NewRequest(http.MethodGet, ghttpServer.URL()+"/api/invoices", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})
