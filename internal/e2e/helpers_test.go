//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

// 起動済みのAPI（BASE_URL）に対して叩く。
// 管理者は cmd/admin で作っておき、E2E_ADMIN_EMAIL / E2E_ADMIN_PASSWORD で渡す。
type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

type UserDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsVerified   bool   `json:"is_verified"`
	TokenVersion int64  `json:"token_version"`
}

type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenVersion int64  `json:"token_version"`
}

type AuthLoginResponse struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type RegisterResponse struct {
	User    UserDTO `json:"user"`
	Message string  `json:"message"`
}

type ShipmentDTO struct {
	ID              int64  `json:"id"`
	TrackingNumber  string `json:"tracking_number"`
	Status          string `json:"status"`
	StatusColor     string `json:"status_color"`
	Version         int64  `json:"version"`
	CurrentLocation string `json:"current_location"`
}

type ShipmentDetail struct {
	Shipment ShipmentDTO `json:"shipment"`
	History  []struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	} `json:"history"`
	Invoice *struct {
		ID            int64  `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		Status        string `json:"status"`
	} `json:"invoice"`
}

type TrackingResponse struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
	History        []struct {
		Status string `json:"status"`
	} `json:"history"`
}

type InvoiceResponse struct {
	Invoice struct {
		ID            int64  `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		Amount        string `json:"amount"`
		Status        string `json:"status"`
	} `json:"invoice"`
}

func (c *TestClient) do(ctx context.Context, t *testing.T, req *http.Request, bearer string) (*http.Response, []byte) {
	t.Helper()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req.WithContext(ctx))
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	return resp, data
}

func (c *TestClient) doJSON(ctx context.Context, t *testing.T, method, path, bearer string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal failed: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, t, req, bearer)
}

// multipartでファイルを1つ送る
func (c *TestClient) upload(ctx context.Context, t *testing.T, path, bearer string, fields map[string]string, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(ctx, t, req, bearer)
}

func (c *TestClient) cookieValue(t *testing.T, path, name string) string {
	t.Helper()
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		t.Fatalf("url.Parse failed: %v", err)
	}
	for _, ck := range c.HTTP.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(%T) failed: %v body=%s", v, err, string(body))
	}
	return v
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("e2e_%s_%d@test.com", prefix, time.Now().UnixNano())
}

// 1x1の最小PDF
func minimalPDF() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}

func login(t *testing.T, c *TestClient, ctx context.Context, email, password string) AuthLoginResponse {
	t.Helper()
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	requireStatus(t, resp, http.StatusOK, body)
	out := mustDecode[AuthLoginResponse](t, body)
	if strings.TrimSpace(out.Token.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}
	return out
}

func adminLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()
	email := os.Getenv("E2E_ADMIN_EMAIL")
	password := os.Getenv("E2E_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("E2E_ADMIN_EMAIL / E2E_ADMIN_PASSWORD not set")
	}
	return login(t, c, ctx, email, password).Token.AccessToken
}

// 登録→管理者承認→ログインまで済ませた顧客
func verifiedCustomer(t *testing.T, c *TestClient, ctx context.Context, adminToken string) (UserDTO, string) {
	t.Helper()
	email := uniqueEmail("customer")
	password := "Harbour-Crane-7"

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", map[string]string{
		"full_name":        "E2E Customer",
		"email":            email,
		"password":         password,
		"confirm_password": password,
	})
	requireStatus(t, resp, http.StatusCreated, body)
	reg := mustDecode[RegisterResponse](t, body)

	resp, body = c.doJSON(ctx, t, http.MethodPut, fmt.Sprintf("/admin/users/%d/verification", reg.User.ID), adminToken, map[string]bool{"verified": true})
	requireStatus(t, resp, http.StatusOK, body)

	out := login(t, c, ctx, email, password)
	return out.User, out.Token.AccessToken
}

func createShipment(t *testing.T, c *TestClient, ctx context.Context, token string) ShipmentDTO {
	t.Helper()
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/shipments", token, map[string]interface{}{
		"sender_name":      "Namib Traders",
		"receiver_name":    "Coastal Imports",
		"receiver_address": "12 Harbour Rd, Walvis Bay",
		"origin_port":      "Durban",
		"destination_port": "Walvis Bay",
		"shipment_type":    "import",
		"packages": []map[string]interface{}{
			{"description": "Machine parts", "quantity": 4, "weight": "120.5", "declared_value": "3000"},
		},
	})
	requireStatus(t, resp, http.StatusCreated, body)
	return mustDecode[ShipmentDetail](t, body).Shipment
}
