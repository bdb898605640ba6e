package vision

import (
	"image"

	cv "gocv.io/x/gocv"
)

// Detect runs the full pipeline on one BGR frame and returns a Summary.
// Detect never retains or mutates frame; it is safe to call repeatedly on
// the same Mat from a single goroutine (the caller, per spec.md §5, is
// expected to own one clone per call).
func Detect(frame cv.Mat, cfg Config) Summary {
	if frame.Empty() {
		return Summary{Danger: DangerOK, Position: PositionNone}
	}

	roi, roiHeight := extractROI(frame, cfg)
	defer roi.Close()

	mask := fuseMasks(roi, cfg)
	defer mask.Close()

	obstacles := segment(mask, roiHeight, roi.Cols(), cfg)
	// segment works on the cropped ROI; shift boxes back to frame coordinates.
	top := int(cfg.ROITop * float64(frame.Rows()))
	for i := range obstacles {
		obstacles[i].BBox.Y += top
	}
	danger, position := classify(obstacles, cfg)

	return Summary{Obstacles: obstacles, Danger: danger, Position: position}
}

// extractROI crops the vertical ground-plane band; width is unchanged.
func extractROI(frame cv.Mat, cfg Config) (cv.Mat, int) {
	h := frame.Rows()
	top := int(cfg.ROITop * float64(h))
	bottom := int(cfg.ROIBottom * float64(h))
	if bottom <= top {
		bottom = top + 1
	}
	if bottom > h {
		bottom = h
	}
	rect := image.Rect(0, top, frame.Cols(), bottom)
	region := frame.Region(rect)
	return region.Clone(), bottom - top
}

// fuseMasks computes the saturation, Laplacian, and Canny masks and ORs
// them together, then applies the morphology cleanup pass.
func fuseMasks(roi cv.Mat, cfg Config) cv.Mat {
	gray := cv.NewMat()
	defer gray.Close()
	cv.CvtColor(roi, &gray, cv.ColorBGRToGray)

	hsv := cv.NewMat()
	defer hsv.Close()
	cv.CvtColor(roi, &hsv, cv.ColorBGRToHSV)

	hsvChannels := cv.Split(hsv)
	defer func() {
		for _, c := range hsvChannels {
			c.Close()
		}
	}()
	saturation := hsvChannels[1]

	grayBlur := cv.NewMat()
	defer grayBlur.Close()
	cv.GaussianBlur(gray, &grayBlur, image.Pt(9, 9), 0, 0, cv.BorderDefault)

	satBlur := cv.NewMat()
	defer satBlur.Close()
	cv.GaussianBlur(saturation, &satBlur, image.Pt(9, 9), 0, 0, cv.BorderDefault)

	satMask := cv.NewMat()
	defer satMask.Close()
	cv.Threshold(satBlur, &satMask, float32(cfg.SaturationThreshold), 255, cv.ThresholdBinary)

	laplacian := cv.NewMat()
	defer laplacian.Close()
	cv.Laplacian(grayBlur, &laplacian, cv.MatTypeCV16S, 1, 1, 0, cv.BorderDefault)
	laplacianAbs := cv.NewMat()
	defer laplacianAbs.Close()
	cv.ConvertScaleAbs(laplacian, &laplacianAbs, 1, 0)
	lapMask := cv.NewMat()
	defer lapMask.Close()
	cv.Threshold(laplacianAbs, &lapMask, float32(cfg.LaplacianThreshold), 255, cv.ThresholdBinary)

	edgeMask := cv.NewMat()
	defer edgeMask.Close()
	cv.Canny(grayBlur, &edgeMask, float32(cfg.CannyLow), float32(cfg.CannyHigh))

	fused := cv.NewMat()
	cv.BitwiseOr(satMask, lapMask, &fused)
	cv.BitwiseOr(fused, edgeMask, &fused)

	closeKernel := cv.GetStructuringElement(cv.MorphRect, image.Pt(7, 7))
	defer closeKernel.Close()
	cv.MorphologyEx(fused, &fused, cv.MorphClose, closeKernel)

	openKernel := cv.GetStructuringElement(cv.MorphRect, image.Pt(3, 3))
	defer openKernel.Close()
	cv.MorphologyEx(fused, &fused, cv.MorphOpen, openKernel)

	dilateKernel := cv.GetStructuringElement(cv.MorphRect, image.Pt(3, 3))
	defer dilateKernel.Close()
	cv.Dilate(fused, &fused, dilateKernel)

	return fused
}

// segment extracts external contours and classifies each one that
// survives the area/aspect/height filters.
func segment(mask cv.Mat, roiHeight, roiWidth int, cfg Config) []Obstacle {
	contours := cv.FindContours(mask, cv.RetrievalExternal, cv.ChainApproxSimple)
	defer contours.Close()

	obstacles := make([]Obstacle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := cv.ContourArea(contour)
		if area < cfg.MinAreaPx {
			continue
		}
		rect := cv.BoundingRect(contour)
		if rect.Dy() == 0 {
			continue
		}
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect > cfg.MaxAspectRatio {
			continue
		}
		if rect.Dy() < cfg.MinHeightPx {
			continue
		}

		cx := rect.Min.X + rect.Dx()/2
		zone := ZoneCenter
		if cx < roiWidth/3 {
			zone = ZoneLeft
		} else if cx > 2*roiWidth/3 {
			zone = ZoneRight
		}

		distance := float32(rect.Max.Y) / float32(roiHeight)

		size := SizeLarge
		switch {
		case area < cfg.SmallSizeMax:
			size = SizeSmall
		case area < cfg.MediumSizeMax:
			size = SizeMedium
		}

		obstacles = append(obstacles, Obstacle{
			BBox:     BBox{X: rect.Min.X, Y: rect.Min.Y, W: rect.Dx(), H: rect.Dy()},
			Zone:     zone,
			Distance: distance,
			Size:     size,
		})
	}
	return obstacles
}

// classify applies the summary labelling rules of spec.md §4.5 step 9.
func classify(obstacles []Obstacle, cfg Config) (Danger, Position) {
	var (
		hasCenter, hasLeft, hasRight bool
		dCenter                      float32
	)
	for _, o := range obstacles {
		switch o.Zone {
		case ZoneCenter:
			if o.Distance > cfg.CenterDistanceThreshold {
				hasCenter = true
				if o.Distance > dCenter {
					dCenter = o.Distance
				}
			}
		case ZoneLeft:
			if o.Distance > cfg.SideDistanceThreshold {
				hasLeft = true
			}
		case ZoneRight:
			if o.Distance > cfg.SideDistanceThreshold {
				hasRight = true
			}
		}
	}

	switch {
	case dCenter > cfg.StopDistanceThreshold:
		return DangerStop, PositionCenter
	case hasCenter:
		return DangerWarn, PositionCenter
	case hasLeft && hasRight:
		return DangerWarn, PositionBoth
	case hasLeft:
		return DangerObs, PositionLeft
	case hasRight:
		return DangerObs, PositionRight
	default:
		return DangerOK, PositionNone
	}
}
