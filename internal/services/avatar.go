package services

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	_ "golang.org/x/image/webp"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
)

const (
	avatarSize     = 512
	avatarFontSize = 206
)

// DefaultAvatarColors is used when AVATAR_COLORS is unset.
var DefaultAvatarColors = []string{
	"#1ABC9C", "#2ECC71", "#3498DB", "#9B59B6", "#34495E",
	"#16A085", "#27AE60", "#2980B9", "#8E44AD", "#E67E22",
	"#E74C3C", "#D35400", "#C0392B", "#7F8C8D",
}

type AvatarConfig struct {
	// FontPath is an optional TTF. The embedded Go Regular face is used otherwise.
	FontPath string
	Colors   []string
}

type AvatarService interface {
	// CreateAndUploadUserAvatar renders an initials avatar and points user at it.
	// The caller persists the updated avatar fields.
	CreateAndUploadUserAvatar(dbc dbctx.Context, user *types.User) error
	CreateAndUploadUserAvatarFromImage(dbc dbctx.Context, user *types.User, raw []byte) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService
	bgColors      []color.NRGBA
	colorByHex    map[string]color.NRGBA
	fontFace      font.Face
}

func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService, cfg AvatarConfig) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	hexes := cfg.Colors
	if len(hexes) == 0 {
		hexes = DefaultAvatarColors
	}
	bgColors := make([]color.NRGBA, 0, len(hexes))
	colorByHex := make(map[string]color.NRGBA, len(hexes))
	for _, raw := range hexes {
		h := normalizeHex(raw)
		if h == "" {
			serviceLog.Warn("Skipping invalid avatar color", "color", raw)
			continue
		}
		r, g, b, _ := parseHexRGB(h)
		c := color.NRGBA{R: r, G: g, B: b, A: 255}
		if _, dup := colorByHex[h]; dup {
			continue
		}
		colorByHex[h] = c
		bgColors = append(bgColors, c)
	}
	if len(bgColors) == 0 {
		return nil, fmt.Errorf("no valid avatar colors configured")
	}

	face, err := loadFontFace(cfg.FontPath, avatarFontSize)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:           serviceLog,
		bucketService: bucketService,
		bgColors:      bgColors,
		colorByHex:    colorByHex,
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(dbc dbctx.Context, user *types.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("%w: user required", pkgerrors.ErrInvalidArgument)
	}
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	return as.replaceAvatar(dbc, user, buf.Bytes())
}

func (as *avatarService) CreateAndUploadUserAvatarFromImage(dbc dbctx.Context, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("%w: user required", pkgerrors.ErrInvalidArgument)
	}
	processed, err := processUploadedAvatar(raw, avatarSize)
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err)
	}
	return as.replaceAvatar(dbc, user, processed.Bytes())
}

// replaceAvatar uploads under a versioned key so CDNs never serve the previous image,
// then removes the old object.
func (as *avatarService) replaceAvatar(dbc dbctx.Context, user *types.User, png []byte) error {
	oldKey := strings.TrimSpace(user.AvatarBucketKey)
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())

	if err := as.bucketService.UploadFile(dbc, gcp.BucketCategoryAvatar, newKey, bytes.NewReader(png)); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}
	user.AvatarBucketKey = newKey
	user.AvatarURL = as.bucketService.GetPublicURL(gcp.BucketCategoryAvatar, newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(dbctx.New(dbc.Ctx), gcp.BucketCategoryAvatar, oldKey); err != nil {
			as.log.Warn("Failed to delete old avatar (ignored)", "old_key", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	var buf bytes.Buffer
	if user == nil {
		return buf, fmt.Errorf("%w: user required", pkgerrors.ErrInvalidArgument)
	}
	as.ensureUserAvatarColor(user)

	dc := gg.NewContext(avatarSize, avatarSize)
	half := float64(avatarSize) / 2
	dc.DrawCircle(half, half, half)
	dc.Clip()

	dc.SetColor(as.pickColor(user.AvatarColor))
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(user.FirstName, user.LastName, user.Username), half, half, 0.5, 0.35)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side == 0 {
		return out, fmt.Errorf("empty image")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)
	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func (as *avatarService) ensureUserAvatarColor(user *types.User) {
	if n := normalizeHex(user.AvatarColor); n != "" {
		if _, ok := as.colorByHex[n]; ok {
			user.AvatarColor = n
			return
		}
	}
	user.AvatarColor = nrgbaToHex(as.bgColors[rand.IntN(len(as.bgColors))])
}

func (as *avatarService) pickColor(hexStr string) color.NRGBA {
	if c, ok := as.colorByHex[normalizeHex(hexStr)]; ok {
		return c
	}
	return as.bgColors[rand.IntN(len(as.bgColors))]
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	s = strings.ToUpper(s)
	if len(s) != 7 {
		return ""
	}
	if _, _, _, err := parseHexRGB(s); err != nil {
		return ""
	}
	return s
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid hex")
	}
	return raw[0], raw[1], raw[2], nil
}

func nrgbaToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// computeInitials uses first+last name initials, falling back to the
// first two letters of the username.
func computeInitials(first, last, username string) string {
	fi, li := firstLetter(first), firstLetter(last)
	switch {
	case fi != "" && li != "":
		return fi + li
	case fi != "":
		return fi
	case li != "":
		return li
	}
	var out []rune
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
			if len(out) == 2 {
				break
			}
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func firstLetter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}

func loadFontFace(path string, points float64) (font.Face, error) {
	ttf := goregular.TTF
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		ttf = raw
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
