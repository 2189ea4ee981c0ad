// Package engine runs OpenCV contour detection and Tesseract OCR over a
// legend sheet and produces a legend drawing.
package engine

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"legend-matcher/internal/config"
	"legend-matcher/internal/legend"
	"legend-matcher/internal/logging"
	"legend-matcher/internal/recognize"
	"legend-matcher/internal/sheet"
	"legend-matcher/pkg/geometry"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Recognizer detects symbols and text labels on legend sheets. A Recognizer
// holds one Tesseract client and must not be used concurrently.
type Recognizer struct {
	client *gosseract.Client
	params recognize.Params
	logger *zap.Logger
}

// New creates a recognizer configured for the given OCR language.
func New(cfg config.RecognitionConfig, logger *zap.Logger) (*Recognizer, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Legend labels are short technical phrases; dictionary correction hurts.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Recognizer{
		client: client,
		params: recognize.Params{
			MinSymbolArea:  cfg.MinSymbolArea,
			MaxSymbolArea:  cfg.MaxSymbolArea,
			MaxAspectRatio: cfg.MaxAspectRatio,
			MinConfidence:  cfg.MinConfidence,
			LineTolerance:  cfg.LineTolerance,
		},
		logger: logging.OrNop(logger),
	}, nil
}

// Close releases the OCR client.
func (r *Recognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// RecognizeFile loads the sheet at path and recognizes it. The drawing id is
// derived from the file name.
func (r *Recognizer) RecognizeFile(ctx context.Context, path string) (*legend.Drawing, error) {
	s, err := sheet.Load(path)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d, err := r.Recognize(ctx, base, s.Image)
	if err != nil {
		return nil, err
	}
	d.ImagePath = path
	return d, nil
}

// Recognize runs text recognition, then symbol detection with the text areas
// excluded.
func (r *Recognizer) Recognize(ctx context.Context, id string, img image.Image) (*legend.Drawing, error) {
	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	words, err := r.detectWords(mat)
	if err != nil {
		return nil, err
	}
	labels := recognize.MergeWords(words, r.params.LineTolerance)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outlines := recognize.FilterSymbols(detectOutlines(mat), labels, r.params)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	d := recognize.Assemble(id, id, geometry.NewSize(float64(b.Dx()), float64(b.Dy())), outlines, labels, r.params)
	r.logger.Info("Legend sheet recognized",
		zap.String("drawing", id),
		zap.Int("words", len(words)),
		zap.Int("symbols", len(d.Symbols)),
		zap.Int("texts", len(d.Texts)))
	return d, nil
}

// detectWords runs sparse-text OCR and returns word boxes.
func (r *Recognizer) detectWords(mat gocv.Mat) ([]recognize.Word, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, gray)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	if err := r.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get boxes: %w", err)
	}

	words := make([]recognize.Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, recognize.Word{
			Text: box.Word,
			Box: geometry.NewRect(
				float64(box.Box.Min.X), float64(box.Box.Min.Y),
				float64(box.Box.Dx()), float64(box.Box.Dy())),
			Confidence: box.Confidence / 100,
		})
	}
	return words, nil
}

// detectOutlines binarizes the sheet (dark ink on light paper), closes small
// gaps and returns the external contours.
func detectOutlines(mat gocv.Mat) []recognize.Outline {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	outlines := make([]recognize.Outline, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		epsilon := 0.01 * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		points := approx.ToPoints()
		approx.Close()

		if o, ok := recognize.NewOutline(contour.ToPoints(), points, gocv.ContourArea(contour)); ok {
			outlines = append(outlines, o)
		}
	}
	return outlines
}

// imageToMat converts a Go image to a BGR gocv.Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
