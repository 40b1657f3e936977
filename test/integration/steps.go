package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/portcullis/pkg/provision"
	"github.com/doodlesbykumbi/portcullis/pkg/seed"
	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	token        string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	sc.Step(`^a Portcullis server is running$`, s.aServerIsRunning)
	sc.Step(`^the following seed is loaded:$`, s.theFollowingSeedIsLoaded)
	sc.Step(`^a user "([^"]*)" exists with password "([^"]*)"$`, s.aUserExists)
	sc.Step(`^a user "([^"]*)" exists with password "([^"]*)" in group "([^"]*)"$`, s.aUserExistsInGroup)

	sc.Step(`^I request a token as "([^"]*)" with password "([^"]*)"$`, s.iRequestAToken)
	sc.Step(`^I request a (\d+) second token as "([^"]*)" with password "([^"]*)"$`, s.iRequestATokenFor)
	sc.Step(`^I GET "([^"]*)" with the token$`, s.iGetWithTheToken)
	sc.Step(`^I GET "([^"]*)" as "([^"]*)" with password "([^"]*)"$`, s.iGetAs)
	sc.Step(`^I GET "([^"]*)" without credentials$`, s.iGetWithoutCredentials)
	sc.Step(`^(\d+) seconds pass$`, s.secondsPass)

	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^I should receive a token valid for (\d+) seconds$`, s.iShouldReceiveAToken)
	sc.Step(`^the audit log should contain "([^"]*)"$`, s.theAuditLogShouldContain)
}

func (s *StepsContext) aServerIsRunning() error {
	return nil
}

func (s *StepsContext) theFollowingSeedIsLoaded(doc *godog.DocString) error {
	loader := seed.NewLoader(storegorm.NewAdminStore(s.tc.DB), nil)
	_, err := loader.LoadFromReader(context.Background(), strings.NewReader(doc.Content))
	return err
}

func (s *StepsContext) aUserExists(username, password string) error {
	return s.createUser(&provision.CreateUserRequest{Username: &username, Password: &password})
}

func (s *StepsContext) aUserExistsInGroup(username, password, group string) error {
	return s.createUser(&provision.CreateUserRequest{Username: &username, Password: &password, Group: &group})
}

func (s *StepsContext) createUser(req *provision.CreateUserRequest) error {
	_, err := s.tc.Server.Provisioner.CreateUser(context.Background(), req)
	return err
}

func (s *StepsContext) iRequestAToken(username, password string) error {
	return s.requestToken("/api/auth", username, password)
}

func (s *StepsContext) iRequestATokenFor(seconds int, username, password string) error {
	return s.requestToken(fmt.Sprintf("/api/auth?duration=%d", seconds), username, password)
}

func (s *StepsContext) requestToken(path, username, password string) error {
	if err := s.do(http.MethodPost, path, func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return nil
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	s.token = body.Token
	return nil
}

func (s *StepsContext) iGetWithTheToken(path string) error {
	if s.token == "" {
		return fmt.Errorf("no token has been issued")
	}
	return s.do(http.MethodGet, path, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+s.token)
	})
}

func (s *StepsContext) iGetAs(path, username, password string) error {
	return s.do(http.MethodGet, path, func(req *http.Request) {
		req.SetBasicAuth(username, password)
	})
}

func (s *StepsContext) iGetWithoutCredentials(path string) error {
	return s.do(http.MethodGet, path, nil)
}

func (s *StepsContext) secondsPass(seconds int) error {
	s.tc.Clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

func (s *StepsContext) do(method, path string, prepare func(*http.Request)) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+path, nil)
	if err != nil {
		return err
	}
	if prepare != nil {
		prepare(req)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no request has been made")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("response is not a JSON object: %s", s.responseBody)
	}
	value, ok := body[field]
	if !ok {
		return fmt.Errorf("response has no field %q: %s", field, s.responseBody)
	}
	if actual := fmt.Sprint(value); actual != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, actual)
	}
	return nil
}

func (s *StepsContext) iShouldReceiveAToken(seconds int) error {
	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}
	if s.token == "" {
		return fmt.Errorf("response has no token: %s", s.responseBody)
	}
	return s.theResponseFieldShouldBe("duration", fmt.Sprint(seconds))
}

func (s *StepsContext) theAuditLogShouldContain(text string) error {
	if !strings.Contains(s.tc.Audit.String(), text) {
		return fmt.Errorf("audit log does not contain %q:\n%s", text, s.tc.Audit.String())
	}
	return nil
}
