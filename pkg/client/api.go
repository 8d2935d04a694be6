package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/sirupsen/logrus"
)

// APIClient is the structured JSON channel used by the vendor mobile app.
type APIClient struct {
	username string
	password string
	*session
}

func NewAPIClient(server, username, password string) *APIClient {
	header := http.Header{}
	header.Set("User-Agent", "WeishauptWEMApp")
	header.Set("X-Api-Version", "2.0.0.0")
	header.Set("Accept", "*/*")
	return &APIClient{
		username: username,
		password: password,
		session:  newSession(strings.TrimSuffix(server, "/"), header),
	}
}

func (c *APIClient) Login(ctx context.Context) error {
	logrus.Debug("login to api")
	form := url.Values{}
	form.Set("Name", c.username)
	form.Set("PasswordUTF8", c.password)
	form.Set("AppID", "com.weishaupt.wemapp")
	form.Set("AppVersion", "2.0.2")
	form.Set("ClientOS", "Android")

	req, err := http.NewRequestWithContext(ctx, "POST", c.server+"/app/Account/Login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.login(req)
}

// Logout drops the session cookies.
func (c *APIClient) Logout(ctx context.Context) error {
	c.setConnected(false)
	return nil
}

// DeviceStructure returns the raw Devices list.
func (c *APIClient) DeviceStructure(ctx context.Context) (json.RawMessage, error) {
	logrus.Debug("fetching api device data")
	req, err := http.NewRequestWithContext(ctx, "GET", c.server+"/app/Device/Read", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req, "device structure")
	if err != nil {
		return nil, err
	}
	return field(body, "Devices")
}

// ModuleParameters returns the raw Parameters list of one module.
func (c *APIClient) ModuleParameters(ctx context.Context, deviceID, moduleIndex int, moduleType model.ModuleType) (json.RawMessage, error) {
	logrus.WithFields(logrus.Fields{
		"device": deviceID,
		"module": moduleIndex,
		"type":   moduleType.String(),
	}).Debug("fetching api parameters data")

	form := url.Values{}
	form.Set("DeviceID", strconv.Itoa(deviceID))
	form.Set("ModuleIndex", strconv.Itoa(moduleIndex))
	form.Set("ModuleType", strconv.Itoa(int(moduleType)))

	req, err := http.NewRequestWithContext(ctx, "POST", c.server+"/app/EventType/Read", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := c.do(req, "module parameters")
	if err != nil {
		return nil, err
	}
	return field(body, "Parameters")
}

// RefreshAndReadValues asks the portal to refresh the queried parameters and
// returns the raw Modules list of the following read. A failed refresh is
// logged and the read still returns the last values the portal has.
func (c *APIClient) RefreshAndReadValues(ctx context.Context, query model.ParameterQuery) (json.RawMessage, error) {
	logrus.WithField("device", query.DeviceID).Debug("refreshing and retrieving new values")
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	refresh, err := http.NewRequestWithContext(ctx, "POST", c.server+"/app/DataAccess/Refresh", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	refresh.Header.Set("Content-Type", "application/json")
	if _, err := c.do(refresh, "value refresh"); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logrus.WithField("device", query.DeviceID).Warn(err)
	}

	read, err := http.NewRequestWithContext(ctx, "POST", c.server+"/app/DataAccess/Read", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	read.Header.Set("Content-Type", "application/json")
	body, err := c.do(read, "values")
	if err != nil {
		return nil, err
	}
	return field(body, "Modules")
}
