package client

import (
	"context"
	"fmt"

	"github.com/pipeos/pipes/src/api/response"
	"github.com/pipeos/pipes/src/utils/build_info"
	"github.com/pipeos/pipes/src/utils/config"
	"github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Error body returned by the API
type Error struct {
	Detail struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	} `json:"error"`
}

func (self *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", self.Detail.StatusCode, self.Detail.Message)
}

// Talks to a running pipes server
type Client struct {
	client *resty.Client
	log    *logrus.Entry
}

func NewClient(config *config.Config) (self *Client) {
	self = new(Client)
	self.log = logger.NewSublogger("client")

	self.client = resty.New().
		SetBaseURL(config.Client.BaseURL).
		SetTimeout(config.Client.Timeout).
		SetHeader("User-Agent", "pipes/client/"+build_info.Version).
		SetError(&Error{}).
		OnAfterResponse(self.onStatusToError)

	return
}

func (self *Client) onStatusToError(c *resty.Client, resp *resty.Response) error {
	// Non-success status code turns into an error
	if resp.IsSuccess() {
		return nil
	}

	self.log.WithField("status", resp.StatusCode()).
		WithField("url", resp.Request.URL).
		Debug("Request failed")

	apiErr, ok := resp.Error().(*Error)
	if ok && apiErr.Detail.StatusCode != 0 {
		return apiErr
	}
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

// CreateWithFunctions stores the container, its functions are derived by the server in the background
func (self *Client) CreateWithFunctions(ctx context.Context, container *model.PipeContainer) (out *model.PipeContainer, err error) {
	out = new(model.PipeContainer)
	_, err = self.client.R().
		SetContext(ctx).
		SetBody(container).
		SetResult(out).
		Post("/pipecontainer/pipefunctions")
	if err != nil {
		return nil, err
	}
	return
}

func (self *Client) GetContainer(ctx context.Context, id string) (out *model.PipeContainer, err error) {
	out = new(model.PipeContainer)
	_, err = self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(out).
		Get("/pipecontainer/{id}")
	if err != nil {
		return nil, err
	}
	return
}

// Derive asks the server to derive functions of a stored container and waits until it's done
func (self *Client) Derive(ctx context.Context, id string) (err error) {
	_, err = self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Post("/pipecontainer/{id}/pipefunctions")
	return
}

func (self *Client) GetFunctions(ctx context.Context, id string) (out []*model.PipeFunction, err error) {
	_, err = self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		Get("/pipecontainer/{id}/pipefunctions")
	if err != nil {
		return nil, err
	}
	return
}

// DeleteFunctions removes the container with its functions, returns the number of removed functions
func (self *Client) DeleteFunctions(ctx context.Context, id string) (count int64, err error) {
	out := new(response.Count)
	_, err = self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(out).
		Delete("/pipecontainer/{id}/pipefunctions")
	if err != nil {
		return
	}
	return out.Count, nil
}
