package server

// appData is what the application template is rendered with.
type appData struct {
	APIBase string
}

// appHTML is the burger builder single-page application. It exposes the
// test-targeting attributes the scenarios rely on: data-cy on ingredient
// cards (keyed by ingredient id), order-button, overlay, login-button and
// user-name, the cart as .constructor with one element per item carrying
// data-id, and the modal container #modals which is empty while closed.
const appHTML = `<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="utf-8">
    <title>Stellar Burgers</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            margin: 0;
            background: #131316;
            color: #f2f2f3;
        }
        header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            padding: 16px 40px;
            background: #1c1c21;
        }
        header form { display: flex; gap: 8px; }
        header input { padding: 8px; border-radius: 4px; border: 1px solid #4c4cff; background: #2f2f37; color: inherit; }
        main { display: flex; gap: 40px; padding: 20px 40px; }
        section { flex: 1; }
        button {
            background: #4c4cff;
            color: white;
            border: none;
            padding: 10px 20px;
            border-radius: 40px;
            cursor: pointer;
            font-size: 16px;
        }
        button:disabled { background: #2f2f37; color: #8585ad; cursor: not-allowed; }
        .catalogue { list-style: none; padding: 0; display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
        .card { position: relative; display: flex; flex-direction: column; align-items: center; gap: 8px; padding: 8px; }
        .card a { color: inherit; text-decoration: none; text-align: center; }
        .card .price { color: #8585ad; }
        .card .counter {
            position: absolute;
            top: 0;
            right: 0;
            min-width: 24px;
            border-radius: 12px;
            background: #4c4cff;
            text-align: center;
        }
        .card .counter:empty { display: none; }
        .constructor { list-style: none; padding: 0; min-height: 120px; }
        .constructor:empty::before { content: 'Добавьте булку и начинку'; color: #8585ad; }
        .constructor li { padding: 12px 16px; margin: 8px 0; border-radius: 40px; background: #1c1c21; }
        .total { display: flex; justify-content: space-between; align-items: center; }
        .modal-overlay { position: fixed; inset: 0; background: rgba(0, 0, 0, 0.6); z-index: 10; }
        .modal {
            position: fixed;
            top: 50%;
            left: 50%;
            transform: translate(-50%, -50%);
            width: 720px;
            padding: 40px;
            border-radius: 40px;
            background: #1c1c21;
            z-index: 11;
        }
        .modal-close { position: absolute; top: 24px; right: 24px; padding: 4px 12px; }
        .order-number { font-size: 64px; text-align: center; }
        .details dl { display: grid; grid-template-columns: repeat(4, 1fr); text-align: center; color: #8585ad; }
    </style>
</head>
<body>
    <header>
        <span>Stellar Burgers</span>
        <span data-cy="user-name" hidden></span>
        <form id="login">
            <input name="email" type="email" placeholder="E-mail" value="test.user@example.com">
            <input name="password" type="password" placeholder="Пароль" value="password">
            <button data-cy="login-button" type="submit">Войти</button>
        </form>
    </header>
    <main>
        <section>
            <h1>Соберите бургер</h1>
            <ul class="catalogue" id="catalogue"></ul>
        </section>
        <section>
            <ul class="constructor"></ul>
            <div class="total">
                <span id="total">0</span>
                <button data-cy="order-button" disabled>Оформить заказ</button>
            </div>
        </section>
    </main>
    <div id="modals"></div>

    <script>
        const API = {{.APIBase}};
        const SINGLETONS = ['bun', 'main'];

        const state = {
            ingredients: [],
            bun: null,
            fillings: [],
            user: null,
            ordering: false,
        };

        const modals = document.getElementById('modals');
        const cart = document.querySelector('.constructor');
        const orderButton = document.querySelector('[data-cy="order-button"]');
        const userName = document.querySelector('[data-cy="user-name"]');
        const loginForm = document.getElementById('login');

        function getCookie(name) {
            const prefix = name + '=';
            for (const part of document.cookie.split(';')) {
                const c = part.trim();
                if (c.startsWith(prefix)) {
                    return decodeURIComponent(c.slice(prefix.length));
                }
            }
            return '';
        }

        function setCookie(name, value) {
            document.cookie = name + '=' + encodeURIComponent(value) + '; path=/';
        }

        async function api(path, options) {
            const res = await fetch(API + path, options);
            const body = await res.json();
            if (!res.ok || !body.success) {
                throw new Error(body.message || ('HTTP ' + res.status));
            }
            return body;
        }

        function authHeaders() {
            const token = getCookie('accessToken');
            return token ? { 'Authorization': 'Bearer ' + token } : {};
        }

        function el(tag, attrs, ...children) {
            const node = document.createElement(tag);
            for (const [k, v] of Object.entries(attrs || {})) {
                node.setAttribute(k, v);
            }
            node.append(...children);
            return node;
        }

        function closeModal() {
            modals.textContent = '';
        }

        function openModal(content) {
            const overlay = el('div', { 'class': 'modal-overlay', 'data-cy': 'overlay' });
            overlay.addEventListener('click', (e) => {
                if (e.target === overlay) {
                    closeModal();
                }
            });
            const close = el('button', { 'class': 'modal-close', 'type': 'button', 'aria-label': 'Закрыть' }, '×');
            close.addEventListener('click', closeModal);
            modals.textContent = '';
            modals.append(overlay, el('div', { 'class': 'modal', 'role': 'dialog' }, close, content));
        }

        document.addEventListener('keydown', (e) => {
            if (e.key === 'Escape') {
                closeModal();
            }
        });

        function openDetails(ing) {
            const facts = el('dl', {},
                el('dt', {}, 'Калории'), el('dt', {}, 'Белки'), el('dt', {}, 'Жиры'), el('dt', {}, 'Углеводы'),
                el('dd', {}, String(ing.calories)), el('dd', {}, String(ing.proteins)),
                el('dd', {}, String(ing.fat)), el('dd', {}, String(ing.carbohydrates)));
            openModal(el('div', { 'class': 'details', 'data-id': ing._id },
                el('h2', {}, 'Детали ингредиента'),
                el('img', { 'src': ing.image_large || '', 'alt': ing.name }),
                el('h3', {}, ing.name),
                facts));
        }

        function addIngredient(ing) {
            if (ing.type === 'bun') {
                state.bun = ing;
            } else if (SINGLETONS.includes(ing.type)) {
                state.fillings = state.fillings.filter((f) => f.type !== ing.type);
                state.fillings.push(ing);
            } else {
                state.fillings.push(ing);
            }
            render();
        }

        function cartItems() {
            const items = [];
            if (state.bun) {
                items.push({ ing: state.bun, label: state.bun.name + ' (верх)' });
            }
            for (const f of state.fillings) {
                items.push({ ing: f, label: f.name });
            }
            if (state.bun) {
                items.push({ ing: state.bun, label: state.bun.name + ' (низ)' });
            }
            return items;
        }

        function renderCatalogue() {
            const list = document.getElementById('catalogue');
            list.textContent = '';
            for (const ing of state.ingredients) {
                const details = el('a', { 'href': '#' }, ing.name);
                details.addEventListener('click', (e) => {
                    e.preventDefault();
                    openDetails(ing);
                });
                const add = el('button', { 'type': 'button' }, 'Добавить');
                add.addEventListener('click', () => addIngredient(ing));
                list.append(el('li', { 'class': 'card', 'data-cy': ing._id },
                    details,
                    el('span', { 'class': 'price' }, String(ing.price)),
                    el('span', { 'class': 'counter' }),
                    add));
            }
        }

        function render() {
            const items = cartItems();
            cart.textContent = '';
            for (const item of items) {
                cart.append(el('li', { 'data-id': item.ing._id }, item.label));
            }

            const counts = {};
            let total = 0;
            for (const item of items) {
                counts[item.ing._id] = (counts[item.ing._id] || 0) + 1;
                total += item.ing.price;
            }
            for (const card of document.querySelectorAll('#catalogue .card')) {
                const n = counts[card.getAttribute('data-cy')] || 0;
                card.querySelector('.counter').textContent = n > 0 ? String(n) : '';
            }
            document.getElementById('total').textContent = String(total);
            orderButton.disabled = !state.bun || state.ordering;
        }

        function renderUser() {
            if (state.user) {
                userName.textContent = state.user.name;
                userName.hidden = false;
                loginForm.hidden = true;
            } else {
                userName.textContent = '';
                userName.hidden = true;
                loginForm.hidden = false;
            }
        }

        loginForm.addEventListener('submit', async (e) => {
            e.preventDefault();
            const data = new FormData(loginForm);
            try {
                const body = await api('/auth/login', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({ email: data.get('email'), password: data.get('password') }),
                });
                setCookie('accessToken', body.accessToken.replace(/^Bearer /, ''));
                localStorage.setItem('refreshToken', body.refreshToken);
                state.user = body.user;
                renderUser();
            } catch (err) {
                console.error('login failed', err);
            }
        });

        orderButton.addEventListener('click', async () => {
            if (!state.bun) {
                return;
            }
            if (!getCookie('accessToken')) {
                loginForm.querySelector('input').focus();
                return;
            }
            state.ordering = true;
            render();
            try {
                const body = await api('/orders', {
                    method: 'POST',
                    headers: Object.assign({ 'Content-Type': 'application/json' }, authHeaders()),
                    body: JSON.stringify({ ingredients: cartItems().map((item) => item.ing._id) }),
                });
                openModal(el('div', { 'class': 'order' },
                    el('h2', { 'class': 'order-number' }, String(body.order.number)),
                    el('p', {}, 'идентификатор заказа'),
                    el('p', {}, 'Ваш заказ начали готовить')));
                state.bun = null;
                state.fillings = [];
            } catch (err) {
                console.error('order failed', err);
            } finally {
                state.ordering = false;
                render();
            }
        });

        async function loadUser() {
            if (!getCookie('accessToken')) {
                return;
            }
            try {
                const body = await api('/auth/user', { headers: authHeaders() });
                state.user = body.user;
            } catch (err) {
                console.error('user fetch failed', err);
            }
            renderUser();
        }

        async function loadIngredients() {
            try {
                const body = await api('/ingredients');
                state.ingredients = body.data;
            } catch (err) {
                console.error('ingredients fetch failed', err);
            }
            renderCatalogue();
            render();
        }

        loadIngredients();
        loadUser();
    </script>
</body>
</html>
`
