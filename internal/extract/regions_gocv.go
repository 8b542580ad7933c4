//go:build gocv
// +build gocv

package extract

import (
	"image"

	"gocv.io/x/gocv"
)

func init() {
	finders["opencv"] = ContourFinder{}
}

// ContourFinder masks the target color with OpenCV and takes the external
// contours as regions. Area is the contour area, not the pixel count.
type ContourFinder struct{}

func (ContourFinder) FindRegions(img image.Image, target ColorTarget) []Region {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil
	}
	defer src.Close()

	t := float64(target.Tolerance)
	c := target.RGB
	// Mats are BGR ordered.
	lower := gocv.NewScalar(float64(c.B)-t, float64(c.G)-t, float64(c.R)-t, 0)
	upper := gocv.NewScalar(float64(c.B)+t, float64(c.G)+t, float64(c.R)+t, 0)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(src, lower, upper, &mask)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		regions = append(regions, Region{
			Bounds: gocv.BoundingRect(pv),
			Area:   int(gocv.ContourArea(pv)),
		})
	}
	return regions
}
