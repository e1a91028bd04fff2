package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"

	"beadify/internal/color"
	imagepkg "beadify/internal/image"
)

// GeneratePDF генерирует PDF файл со схемой и легендой.
// Принимает на вход картинку-схему, список использованных бусин и размеры.
func GeneratePDF(mosaicImg image.Image, usages []imagepkg.ColorUsage, sizeInfo imagepkg.SizeInfo) ([]byte, error) {
	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, mosaicImg); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	// Константы расположения
	const (
		pageMarginTop   = 15.0 // мм от верха для первой страницы
		legendMarginTop = 8.0  // между картинкой и легендой
		bottomMargin    = 15.0 // мм от низа страницы
		cols            = 5
		squareSize      = 5.0
		gutter          = 2.0
		marginLeft      = 10.0
		marginRight     = 10.0
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 для встроенных шрифтов
	y0 := printSchemeSizes(pdf, sizeInfo, pageW, pageMarginTop)

	// Вставка изображения, масштаб по ширине или по высоте страницы
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("mosaic", imgOpts, &imgBuf)
	info := pdf.GetImageInfo("mosaic")
	if info == nil {
		return nil, fmt.Errorf("register image: %w", pdf.Error())
	}
	imgW, imgH := info.Width(), info.Height()
	maxW := pageW - marginLeft - marginRight
	maxH := pageH - y0 - legendMarginTop - bottomMargin
	scale := maxW / imgW
	if imgH*scale > maxH {
		scale = maxH / imgH
	}
	imgW, imgH = imgW*scale, imgH*scale
	x0 := (pageW - imgW) / 2
	pdf.ImageOptions("mosaic", x0, y0, imgW, imgH, false, imgOpts, 0, "")

	// Переменные для легенды
	pdf.SetFont("Arial", "", 8)
	usableW := pageW - marginLeft - marginRight
	colW := usableW / float64(cols)
	lineH := squareSize + 1.0

	currentCol := 0
	currentRow := 0
	startY := y0 + imgH + legendMarginTop

	newPage := func() {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 8)
		currentCol = 0
		currentRow = 0
		startY = pageMarginTop
	}

	for _, u := range usages {
		xPos := marginLeft + float64(currentCol)*colW
		yPos := startY + float64(currentRow)*lineH

		// если не помещается вниз — новая страница
		if yPos+squareSize > pageH-bottomMargin {
			newPage()
			xPos = marginLeft
			yPos = startY
		}

		// квадрат
		rgb := u.Entry.RGB
		pdf.SetFillColor(int(rgb.R), int(rgb.G), int(rgb.B))
		pdf.Rect(xPos, yPos, squareSize, squareSize, "FD")

		// первая буква кода по центру квадрата, цвет по яркости фона
		if u.Entry.Coco != "" {
			txt, _ := color.ParseHex(color.ContrastText(u.Entry.Hex))
			pdf.SetFont("Arial", "B", 6)
			pdf.SetTextColor(int(txt.R), int(txt.G), int(txt.B))
			glyph := tr(string([]rune(u.Entry.Coco)[:1]))
			glyphW := pdf.GetStringWidth(glyph)
			pdf.Text(xPos+(squareSize-glyphW)/2, yPos+squareSize/2+1.0, glyph)
		}

		// текст справа: COCO / MARD (количество)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(xPos+squareSize+gutter, yPos+squareSize-1.0, tr(legendText(u)))

		currentCol++
		if currentCol >= cols {
			currentCol = 0
			currentRow++
		}
	}

	var pdfBuf bytes.Buffer
	if err := pdf.Output(&pdfBuf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdfBuf.Bytes(), nil
}

// legendText формирует подпись бусины в легенде.
func legendText(u imagepkg.ColorUsage) string {
	code := u.Entry.Coco
	if code == "" {
		code = "#" + u.Entry.Hex
	}
	if u.Entry.Mard != "" {
		code += " / " + u.Entry.Mard
	}
	return fmt.Sprintf("%s (%d)", code, u.Count)
}

// Выводит строку с размерами над изображением, возвращает Y для картинки.
func printSchemeSizes(pdf *gofpdf.Fpdf, size imagepkg.SizeInfo, pageW float64, pageMarginTop float64) float64 {
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(60, 70, 160)
	sizeStr := fmt.Sprintf(
		"Scheme size: %d x %d beads (%.1f x %.1f cm)",
		size.WidthPX, size.HeightPX, size.WidthCM, size.HeightCM,
	)

	// Центрируем по ширине
	pdf.SetXY(0, pageMarginTop-10)
	pdf.CellFormat(pageW, 7, sizeStr, "", 1, "C", false, 0, "")

	return pdf.GetY() + 3 // небольшой отступ после текста
}
