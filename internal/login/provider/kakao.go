package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"golang.org/x/oauth2"
)

var (
	ErrExchange     = errors.New("provider: token exchange failed")
	ErrProfileFetch = errors.New("provider: profile fetch failed")
	ErrRevoke       = errors.New("provider: revoke failed")
)

const (
	DefaultAuthURL     = "https://kauth.kakao.com/oauth/authorize"
	DefaultTokenURL    = "https://kauth.kakao.com/oauth/token"
	DefaultProfileURL  = "https://kapi.kakao.com/v2/user/me"
	DefaultLogoutURL   = "https://kapi.kakao.com/v1/user/logout"
	DefaultCallTimeout = 5 * time.Second
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides. Empty values fall back to the public Kakao URLs.
	AuthURL    string
	TokenURL   string
	ProfileURL string
	LogoutURL  string

	// CallTimeout bounds each outbound call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// HTTPClient is used for every outbound call when set.
	HTTPClient *http.Client
}

// Kakao talks to Kakao's OAuth and user APIs. Each method is exactly one
// outbound request with no retries.
type Kakao struct {
	oauth      *oauth2.Config
	profileURL string
	logoutURL  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewKakao(cfg Config) *Kakao {
	k := &Kakao{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   orDefault(cfg.AuthURL, DefaultAuthURL),
				TokenURL:  orDefault(cfg.TokenURL, DefaultTokenURL),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: orDefault(cfg.ProfileURL, DefaultProfileURL),
		logoutURL:  orDefault(cfg.LogoutURL, DefaultLogoutURL),
		timeout:    cfg.CallTimeout,
		httpClient: cfg.HTTPClient,
	}
	if k.timeout <= 0 {
		k.timeout = DefaultCallTimeout
	}
	return k
}

// AuthCodeURL returns the authorization URL the browser is sent to.
func (k *Kakao) AuthCodeURL() string {
	return k.oauth.AuthCodeURL("")
}

// callContext bounds one outbound call and routes it through the configured
// HTTP client.
func (k *Kakao) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if k.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, k.httpClient)
	}
	return context.WithTimeout(ctx, k.timeout)
}

// Exchange trades an authorization code for an access token. A non-success
// status, a body without access_token or a timeout all fail with ErrExchange.
func (k *Kakao) Exchange(ctx context.Context, code string) (string, error) {
	ctx, cancel := k.callContext(ctx)
	defer cancel()

	tok, err := k.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return "", fmt.Errorf("%w: status %d: %s", ErrExchange, re.Response.StatusCode, retrieveErrorDetail(re))
		}
		return "", fmt.Errorf("%w: %v", ErrExchange, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: response missing access_token", ErrExchange)
	}
	return tok.AccessToken, nil
}

func retrieveErrorDetail(re *oauth2.RetrieveError) string {
	switch {
	case re.ErrorDescription != "":
		return re.ErrorDescription
	case re.ErrorCode != "":
		return re.ErrorCode
	default:
		return string(re.Body)
	}
}

// kakaoUser is the subset of /v2/user/me this service reads. Older apps
// expose the nickname and image under properties, newer ones under
// kakao_account.profile.
type kakaoUser struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (u kakaoUser) profile() domain.Profile {
	return domain.Profile{
		ID:          u.ID,
		DisplayName: orDefault(u.Properties.Nickname, u.KakaoAccount.Profile.Nickname),
		Email:       u.KakaoAccount.Email,
		AvatarURL:   orDefault(u.Properties.ProfileImage, u.KakaoAccount.Profile.ProfileImageURL),
	}
}

// FetchProfile reads the profile the access token belongs to. Any failure,
// including an unauthorized token or a profile without an id, is
// ErrProfileFetch.
func (k *Kakao) FetchProfile(ctx context.Context, accessToken string) (domain.Profile, error) {
	ctx, cancel := k.callContext(ctx)
	defer cancel()

	resp, err := k.do(ctx, http.MethodGet, k.profileURL, accessToken)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Profile{}, fmt.Errorf("%w: status %d", ErrProfileFetch, resp.StatusCode)
	}

	var u kakaoUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: decode: %v", ErrProfileFetch, err)
	}
	if u.ID == 0 {
		return domain.Profile{}, fmt.Errorf("%w: response missing id", ErrProfileFetch)
	}
	return u.profile(), nil
}

// Revoke logs the token out at Kakao. Callers treat failure as a warning.
func (k *Kakao) Revoke(ctx context.Context, accessToken string) error {
	ctx, cancel := k.callContext(ctx)
	defer cancel()

	resp, err := k.do(ctx, http.MethodPost, k.logoutURL, accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevoke, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRevoke, resp.StatusCode)
	}
	return nil
}

func (k *Kakao) do(ctx context.Context, method, url, accessToken string) (*http.Response, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return client.Do(req)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
