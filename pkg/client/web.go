package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/sirupsen/logrus"
)

// maxDisplayTimeLayout is how the web ui formats the upper bound of a statistic request.
const maxDisplayTimeLayout = "2006-01-02 15:04:05"

// WebClient is the scraped browser session. It is only used for statistics.
type WebClient struct {
	username string
	password string
	*session
}

func NewWebClient(server, username, password string) *WebClient {
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")
	return &WebClient{
		username: username,
		password: password,
		session:  newSession(strings.TrimSuffix(server, "/"), header),
	}
}

// Login fetches the login page, keeps its hidden form state and posts the credentials.
func (c *WebClient) Login(ctx context.Context) error {
	logrus.Debug("login to web portal")
	req, err := http.NewRequestWithContext(ctx, "GET", c.server+"/Web/Login.aspx", nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: error fetching login page StatusCode: %d", ErrConnection, resp.StatusCode)
	}

	form, err := hiddenInputs(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: error reading login page: %w", ErrConnection, err)
	}
	form.Set("ctl00$content$tbxUserName", c.username)
	form.Set("ctl00$content$tbxPassword", c.password)
	form.Set("ctl00$content$btnLogin", "Anmelden")

	post, err := http.NewRequestWithContext(ctx, "POST", c.server+"/Web/Login.aspx", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.login(post)
}

func (c *WebClient) Logout(ctx context.Context) error {
	c.setConnected(false)
	return nil
}

type statisticGroup struct {
	Modules []struct {
		SystemTableID *int64 `json:"SystemTableID"`
	} `json:"Modules"`
}

// StatisticStructure returns the system table ids of every module the web ui
// knows for the device.
func (c *WebClient) StatisticStructure(ctx context.Context, deviceID int) ([]int64, error) {
	u := fmt.Sprintf("%s/Web/Api/DeviceStatistics/GetStructure?deviceId=%d", c.server, deviceID)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req, "statistic structure")
	if err != nil {
		return nil, err
	}

	var groups []statisticGroup
	if err := json.Unmarshal(body, &groups); err != nil {
		return nil, fmt.Errorf("%w: statistic structure: %s", model.ErrMalformedPayload, err)
	}
	ids := []int64{}
	for _, g := range groups {
		for _, m := range g.Modules {
			if m.SystemTableID == nil {
				return nil, fmt.Errorf("%w: statistic structure: missing field SystemTableID", model.ErrMalformedPayload)
			}
			ids = append(ids, *m.SystemTableID)
		}
	}
	return ids, nil
}

// Statistics returns the raw statistic payload of one category.
func (c *WebClient) Statistics(ctx context.Context, systemTableIDs []int64, category model.StatisticType, granularity model.GraphType, asOf time.Time) (json.RawMessage, error) {
	logrus.WithFields(logrus.Fields{
		"category":    category.String(),
		"granularity": granularity.String(),
	}).Debug("fetching statistic")

	form := url.Values{}
	for _, id := range systemTableIDs {
		form.Add("SystemTableIDs[]", strconv.FormatInt(id, 10))
	}
	form.Set("StatisticsType", strconv.Itoa(int(category)))
	form.Set("GraphType", strconv.Itoa(int(granularity)))
	form.Set("MaxDisplayTime", asOf.Format(maxDisplayTimeLayout))
	form.Set("MonthType", "0")

	req, err := http.NewRequestWithContext(ctx, "POST", c.server+"/Web/Api/DeviceStatistics/GetStatistics", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := c.do(req, category.String()+" statistic")
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
