// Package api: Tüm uç noktaların kullandığı yanıt zarfı.
// Editör istemcisi her yanıtı {status: {error, message, code}, data} olarak bekler.
package api

import "github.com/gofiber/fiber/v2"

type Status struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type Envelope struct {
	Status Status `json:"status"`
	Data   any    `json:"data"`
}

// Data: Başarılı yanıt
func Data(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{
		Status: Status{Error: false, Code: fiber.StatusOK},
		Data:   data,
	})
}

// Created: 201 ile başarılı yanıt
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Status: Status{Error: false, Code: fiber.StatusCreated},
		Data:   data,
	})
}

// Message: Veri yerine yalnızca mesaj taşıyan başarılı yanıt
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(Envelope{
		Status: Status{Error: false, Message: message, Code: fiber.StatusOK},
	})
}

// Confirm: Kullanıcı onayı gereken kayıt denemesi (409). Data içinde onay
// türü döner; istemci onay bayrağıyla isteği tekrarlar.
func Confirm(c *fiber.Ctx, kind, message string) error {
	return c.Status(fiber.StatusConflict).JSON(Envelope{
		Status: Status{Error: false, Message: message, Code: fiber.StatusConflict},
		Data:   fiber.Map{"confirm": kind},
	})
}

// Fail: Hata zarfı (global hata yakalayıcı da bunu kullanır)
func Fail(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(Envelope{
		Status: Status{Error: true, Message: message, Code: code},
	})
}
