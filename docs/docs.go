// Package docs регистрирует swagger-описание API для http-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"],
                "summary": "Начало сессии",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/session/signout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"],
                "summary": "Выход из аккаунта",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/entitlement": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["entitlement"],
                "summary": "Текущее состояние подписки",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/entitlement/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["entitlement"],
                "summary": "Перечитать подписку",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/features/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["features"],
                "summary": "Решение по доступу к функции",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/onboarding": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["onboarding"],
                "summary": "Нужно ли показать онбординг",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/onboarding/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["onboarding"],
                "summary": "Отметить онбординг пройденным",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/profile": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["profile"],
                "summary": "Изменить имя в профиле",
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/role": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["role"],
                "summary": "Роль пользователя",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["pets"],
                "summary": "Список питомцев",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["pets"],
                "summary": "Добавить питомца",
                "responses": {"201": {"description": "Created"}, "402": {"description": "Payment Required"}}
            }
        },
        "/pets/{id}/meals": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["diary"],
                "summary": "Записать приём пищи",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/pets/{id}/meals/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["diary"],
                "summary": "Калории за день",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "day", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/pets/{id}/weights": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["diary"],
                "summary": "История веса",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "402": {"description": "Payment Required"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["diary"],
                "summary": "Записать взвешивание",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/pets/{id}/weights/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["diary"],
                "summary": "Выгрузка истории веса в CSV",
                "produces": ["text/csv"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "402": {"description": "Payment Required"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo метаданные API, подставляемые в шаблон.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pawlog API",
	Description:      "Бэкенд дневника собаки: подписка, доступ к премиум-функциям, онбординг и роли.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
