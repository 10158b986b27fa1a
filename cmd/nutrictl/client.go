package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient() *resty.Client {
	return resty.New().SetBaseURL(apiFlag).SetTimeout(60 * time.Second)
}

func checkResponse(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func doGet(path string) ([]byte, error) {
	return checkResponse(newClient().R().Get(path))
}

func doPostJSON(path string, payload interface{}) ([]byte, error) {
	return checkResponse(newClient().R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(path))
}

func doDelete(path string) ([]byte, error) {
	return checkResponse(newClient().R().Delete(path))
}
